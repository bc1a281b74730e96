package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/pavanbh/career-oracle/internal/store"
)

// StartJanitor runs a background sweep that closes sessions idle past ttl
// and removes their transcripts. Returns immediately; the sweep stops when
// ctx is cancelled.
func StartJanitor(ctx context.Context, mgr *Manager, repo store.Repository, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("session janitor stopped")
				return
			case <-ticker.C:
				sweep(ctx, mgr, repo, ttl)
			}
		}
	}()
}

func sweep(ctx context.Context, mgr *Manager, repo store.Repository, ttl time.Duration) {
	expired := make(map[string]struct{})
	for _, id := range mgr.IdleSessions(ttl) {
		expired[id] = struct{}{}
	}

	stored, err := repo.ExpiredSessions(ctx, ttl)
	if err != nil {
		slog.Error("janitor: failed to list expired sessions", "error", err)
	} else {
		cutoff := time.Now().Add(-ttl)
		for _, id := range stored {
			// A stale stored timestamp can lag behind live in-process
			// activity; never reap a session that is still in use.
			if mgr.SeenSince(id, cutoff) {
				continue
			}
			expired[id] = struct{}{}
		}
	}

	for id := range expired {
		mgr.CloseSession(id)
		if err := repo.DeleteSession(ctx, id); err != nil {
			slog.Error("janitor: failed to delete session", "session_id", id, "error", err)
			continue
		}
		slog.Info("janitor: expired session removed", "session_id", id)
	}
}
