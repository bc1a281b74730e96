// Package store provides transcript persistence interfaces and implementations.
//
// State is transient by design: the default DSN is an in-memory SQLite
// database that lives and dies with the process.
package store

import (
	"context"
	"time"

	"github.com/pavanbh/career-oracle/internal/domain"
)

// Repository defines the interface for persisting sessions and their
// transcripts. Transcripts are append-only: turns are written once, in
// conversation order, and never updated.
type Repository interface {
	// EnsureSession creates the session record if it does not exist yet.
	EnsureSession(ctx context.Context, sessionID string) error

	// TouchSession updates the last_seen_at timestamp for a session.
	TouchSession(ctx context.Context, sessionID string, seenAt time.Time) error

	// GetSession returns the session record, or nil if it does not exist.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// AppendTurn appends one turn to a session transcript.
	AppendTurn(ctx context.Context, sessionID string, turn domain.Turn) error

	// ListTurns returns the full transcript for a session in append order.
	ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// DeleteSession removes a session record and its transcript.
	DeleteSession(ctx context.Context, sessionID string) error

	// ExpiredSessions returns the IDs of sessions idle longer than ttl.
	ExpiredSessions(ctx context.Context, ttl time.Duration) ([]string, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
