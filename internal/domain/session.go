package domain

import (
	"time"
)

// Session is the durable identity of one conversation context. The live
// state (stateful chat handle, resume guard) is owned by the session
// manager; this record only tracks lifecycle timestamps.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// IdleFor reports how long the session has been without activity.
func (s *Session) IdleFor(now time.Time) time.Duration {
	idle := now.Sub(s.LastSeenAt)
	if idle < 0 {
		return 0
	}
	return idle
}
