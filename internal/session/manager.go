// Package session manages live conversation sessions: the stateful chat
// handle, the once-per-session resume guard, and active WebSocket
// connections.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/pavanbh/career-oracle/internal/llm"
)

// live holds the in-process state of one session. The chat handle is
// created lazily exactly once and reused for every composite exchange;
// recreating it would lose conversational memory.
type live struct {
	mu              sync.Mutex
	chat            llm.Chat
	resumeProcessed bool
	resumeSkills    []string
	resumeAnalysis  string
	lastSeen        time.Time
	conns           map[*websocket.Conn]struct{}
}

// Manager is the registry of live sessions.
type Manager struct {
	mu       sync.RWMutex
	client   llm.Client
	sessions map[string]*live
}

// NewManager creates a session manager over the given LLM client.
func NewManager(client llm.Client) *Manager {
	return &Manager{
		client:   client,
		sessions: make(map[string]*live),
	}
}

func (m *Manager) get(sessionID string) *live {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &live{
			lastSeen: time.Now(),
			conns:    make(map[*websocket.Conn]struct{}),
		}
		m.sessions[sessionID] = s
	}
	return s
}

// Touch marks the session as recently active.
func (m *Manager) Touch(sessionID string) {
	s := m.get(sessionID)
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Chat returns the session's stateful chat handle, creating it on first
// need. Exactly one handle exists per session for its whole lifetime.
func (m *Manager) Chat(ctx context.Context, sessionID string) (llm.Chat, error) {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chat == nil {
		chat, err := m.client.NewChat(ctx)
		if err != nil {
			return nil, err
		}
		s.chat = chat
		slog.Debug("chat handle created", "session_id", sessionID)
	}
	return s.chat, nil
}

// ResumeProcessed reports whether the resume pipeline already ran this
// session.
func (m *Manager) ResumeProcessed(sessionID string) bool {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeProcessed
}

// ResumeResult returns the cached resume analysis, if any.
func (m *Manager) ResumeResult(sessionID string) (skills []string, analysis string, ok bool) {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resumeProcessed {
		return nil, "", false
	}
	return s.resumeSkills, s.resumeAnalysis, true
}

// SetResumeResult records the resume analysis and arms the guard so the
// pipeline is not re-invoked this session.
func (m *Manager) SetResumeResult(sessionID string, skills []string, analysis string) {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeProcessed = true
	s.resumeSkills = skills
	s.resumeAnalysis = analysis
}

// ResetResume clears the guard and all cached resume-derived values. The
// chat handle is untouched: conversational memory outlives a resume reset.
func (m *Manager) ResetResume(sessionID string) {
	s := m.get(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeProcessed = false
	s.resumeSkills = nil
	s.resumeAnalysis = ""
	slog.Info("resume state reset", "session_id", sessionID)
}

// RegisterConn adds an active WebSocket connection for the session.
func (m *Manager) RegisterConn(sessionID string, conn *websocket.Conn) {
	s := m.get(sessionID)
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	slog.Info("chat connection registered", "session_id", sessionID)
}

// UnregisterConn removes a WebSocket connection for the session.
func (m *Manager) UnregisterConn(sessionID string, conn *websocket.Conn) {
	s := m.get(sessionID)
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	slog.Info("chat connection unregistered", "session_id", sessionID)
}

// CloseSession terminates a session: closes its connections and drops all
// live state, including the chat handle.
func (m *Manager) CloseSession(sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close(websocket.StatusNormalClosure, "session closed")
	}
	slog.Info("session closed", "session_id", sessionID)
}

// IdleSessions returns IDs of sessions with no activity for longer than ttl.
// SeenSince reports whether the session has live in-process activity after
// cutoff. Sessions with no live state report false.
func (m *Manager) SeenSince(sessionID string, cutoff time.Time) bool {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.After(cutoff)
}

func (m *Manager) IdleSessions(ttl time.Duration) []string {
	cutoff := time.Now().Add(-ttl)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			ids = append(ids, id)
		}
	}
	return ids
}
