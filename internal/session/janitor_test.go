package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavanbh/career-oracle/internal/domain"
	"github.com/pavanbh/career-oracle/internal/store"
)

func newJanitorStore(t *testing.T) store.Repository {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "oracle.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSweepRemovesIdleAndStoredSessions(t *testing.T) {
	ctx := context.Background()
	client := &countingClient{}
	mgr := NewManager(client)
	repo := newJanitorStore(t)

	for _, id := range []string{"live-stale", "stored-stale", "live-fresh"} {
		if err := repo.EnsureSession(ctx, id); err != nil {
			t.Fatalf("EnsureSession(%s) failed: %v", id, err)
		}
	}
	stale := time.Now().Add(-2 * time.Hour)
	if err := repo.TouchSession(ctx, "live-stale", stale); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}
	if err := repo.TouchSession(ctx, "stored-stale", stale); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}

	mgr.mu.Lock()
	mgr.sessions["live-stale"] = &live{lastSeen: stale}
	mgr.mu.Unlock()
	mgr.Touch("live-fresh")

	sweep(ctx, mgr, repo, time.Hour)

	for _, id := range []string{"live-stale", "stored-stale"} {
		sess, err := repo.GetSession(ctx, id)
		if err != nil {
			t.Fatalf("GetSession(%s) failed: %v", id, err)
		}
		if sess != nil {
			t.Errorf("Expected session %s to be deleted", id)
		}
	}

	sess, err := repo.GetSession(ctx, "live-fresh")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess == nil {
		t.Error("Expected fresh session to survive the sweep")
	}

	mgr.mu.RLock()
	_, staleAlive := mgr.sessions["live-stale"]
	_, freshAlive := mgr.sessions["live-fresh"]
	mgr.mu.RUnlock()
	if staleAlive {
		t.Error("Expected stale live session dropped")
	}
	if !freshAlive {
		t.Error("Expected fresh live session to survive the sweep")
	}
}

func TestSweepKeepsActiveSessionWithStaleStoredTimestamp(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(&countingClient{})
	repo := newJanitorStore(t)

	key := "anon:tab1"
	if err := repo.EnsureSession(ctx, key); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if err := repo.AppendTurn(ctx, key, domain.NewTextTurn(domain.RoleUser, "how do I get into data analytics?")); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	// Stored timestamp lags far behind, but the session is active right now.
	if err := repo.TouchSession(ctx, key, time.Now().Add(-2*time.Hour)); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}
	mgr.Touch(key)

	sweep(ctx, mgr, repo, time.Hour)

	sess, err := repo.GetSession(ctx, key)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess == nil {
		t.Fatal("Expected active session to survive the sweep")
	}
	turns, err := repo.ListTurns(ctx, key)
	if err != nil {
		t.Fatalf("ListTurns failed: %v", err)
	}
	if len(turns) != 1 {
		t.Errorf("Expected transcript to survive, got %d turns", len(turns))
	}
}
