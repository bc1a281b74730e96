// Package api provides HTTP handlers for the Career Oracle API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pavanbh/career-oracle/internal/assistant"
	"github.com/pavanbh/career-oracle/internal/config"
	"github.com/pavanbh/career-oracle/internal/domain"
	"github.com/pavanbh/career-oracle/internal/identity"
	"github.com/pavanbh/career-oracle/internal/session"
	"github.com/pavanbh/career-oracle/internal/store"
	"github.com/pavanbh/career-oracle/internal/stream"
)

// Handler serves the assistant API: chat turns, transcript replay, resume
// analysis and session reset.
type Handler struct {
	orch        *assistant.Orchestrator
	sessions    *session.Manager
	repo        store.Repository
	log         assistant.ConversationLogger
	rateLimiter *RateLimiter
	pacer       stream.Pacer
	cfg         *config.Config
}

// NewHandler creates a Handler with its collaborators.
func NewHandler(orch *assistant.Orchestrator, sessions *session.Manager, repo store.Repository, convLog assistant.ConversationLogger, cfg *config.Config) *Handler {
	if convLog == nil {
		convLog = mustNoopLogger()
	}
	return &Handler{
		orch:        orch,
		sessions:    sessions,
		repo:        repo,
		log:         convLog,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration),
		pacer: stream.Pacer{
			WordDelay:  cfg.Stream.WordDelay,
			BlockDelay: cfg.Stream.BlockDelay,
		},
		cfg: cfg,
	}
}

func mustNoopLogger() assistant.ConversationLogger {
	l, _ := assistant.NewConversationLogger(assistant.ConversationLogConfig{Enabled: false}, nil)
	return l
}

// RegisterRoutes registers assistant API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Get("/transcript", h.HandleTranscript)
		r.Post("/resume", h.HandleResume)
		r.Post("/reset", h.HandleReset)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// HandleTranscript handles GET /api/transcript: the ordered transcript for
// the caller's session, text and flowchart turns in original positions.
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}

	turns, err := h.orch.Transcript(r.Context(), key)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if turns == nil {
		turns = []domain.Turn{}
	}

	resp := map[string]interface{}{"turns": turns}
	if sess, err := h.repo.GetSession(r.Context(), key); err == nil && sess != nil {
		resp["session"] = sess
		slog.Debug("transcript replayed", "turns", len(turns), "idle", sess.IdleFor(time.Now()).Round(time.Second))
	}
	JSON(w, http.StatusOK, resp)
}

// HandleReset handles POST /api/reset: clears the resume guard and all
// cached resume-derived values for the session. The transcript and the
// stateful chat handle survive a reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}

	h.sessions.ResetResume(key)
	h.logEvent(r, "reset", "outbound", "session_reset", "")
	JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) sessionKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	sessionID := identity.SessionIDFromContext(r.Context())
	return identity.SessionKey(userID, sessionID), true
}

func (h *Handler) logEvent(r *http.Request, channel, direction, eventType, content string) {
	h.log.Log(assistant.ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     identity.UserIDFromContext(r.Context()),
		SessionID:  identity.SessionIDFromContext(r.Context()),
		Channel:    channel,
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
	})
}
