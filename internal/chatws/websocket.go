// Package chatws provides the WebSocket chat transport. It carries the same
// conversational turns as the HTTP SSE endpoint, for clients that keep a
// single long-lived connection open per tab.
package chatws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/pavanbh/career-oracle/internal/assistant"
	"github.com/pavanbh/career-oracle/internal/flowchart"
	"github.com/pavanbh/career-oracle/internal/identity"
	"github.com/pavanbh/career-oracle/internal/session"
	"github.com/pavanbh/career-oracle/internal/stream"
)

// Handler upgrades /ws/chat connections and runs the chat message loop.
type Handler struct {
	orch          *assistant.Orchestrator
	sessions      *session.Manager
	convLog       assistant.ConversationLogger
	pacer         stream.Pacer
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a WebSocket chat handler.
func NewHandler(orch *assistant.Orchestrator, sessions *session.Manager, convLog assistant.ConversationLogger, pacer stream.Pacer, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		orch:          orch,
		sessions:      sessions,
		convLog:       convLog,
		pacer:         pacer,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// inboundMessage is a client frame.
type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// outboundMessage is a server frame. Chunk and block-break frames carry one
// word or paragraph boundary of the streamed answer; flowchart frames carry
// the roadmap steps plus a prebuilt graph and its DOT rendering.
type outboundMessage struct {
	Type  assistant.EventType `json:"type"`
	Text  string              `json:"text,omitempty"`
	Steps []string            `json:"steps,omitempty"`
	Graph *flowchart.Graph    `json:"graph,omitempty"`
	Dot   string              `json:"dot,omitempty"`
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	key := identity.SessionKey(userID, sessionID)
	slog.Info("WebSocket chat connection request", "user_id", userID, "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.sessions.RegisterConn(key, ws)
	defer h.sessions.UnregisterConn(key, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.messageLoop(ctx, ws, key, userID, sessionID)
	slog.Info("WebSocket chat session ended", "user_id", userID, "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) messageLoop(ctx context.Context, ws *websocket.Conn, key, userID, sessionID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.writeJSON(ctx, ws, map[string]string{"type": "error", "text": "invalid message"})
			continue
		}

		switch msg.Type {
		case "chat":
			if msg.Content == "" {
				h.writeJSON(ctx, ws, map[string]string{"type": "error", "text": "message is required"})
				continue
			}
			h.logConv(userID, sessionID, "outbound", "chat_user_message", msg.Content)
			h.streamTurn(ctx, ws, userID, sessionID, h.orch.Turn(ctx, key, msg.Content))
		case "reset":
			h.sessions.ResetResume(key)
			h.logConv(userID, sessionID, "outbound", "session_reset", "")
			h.writeJSON(ctx, ws, map[string]string{"type": "reset"})
		case "ping":
			h.writeJSON(ctx, ws, map[string]string{"type": "pong"})
		default:
			h.writeJSON(ctx, ws, map[string]string{"type": "error", "text": "unknown message type"})
		}
	}
}

// streamTurn relays orchestrator events to the client, pacing word and
// block-break frames so the answer appears to type itself out.
func (h *Handler) streamTurn(ctx context.Context, ws *websocket.Conn, userID, sessionID string, events func(func(*assistant.Event, error) bool)) {
	var finalText string

	for ev, err := range events {
		if err != nil {
			slog.Error("turn stream failed", "user_id", userID, "session_id", sessionID, "error", err)
			h.writeJSON(ctx, ws, map[string]string{"type": "error", "text": err.Error()})
			return
		}

		out := outboundMessage{Type: ev.Type, Text: ev.Text, Steps: ev.Steps}
		switch ev.Type {
		case assistant.EventChunk:
			if waitErr := h.pacer.Wait(ctx, stream.Word); waitErr != nil {
				return
			}
		case assistant.EventBlockBreak:
			if waitErr := h.pacer.Wait(ctx, stream.BlockBreak); waitErr != nil {
				return
			}
		case assistant.EventFlowchart:
			if g := flowchart.Build(ev.Steps); !g.Empty() {
				out.Graph = &g
				out.Dot = g.DOT()
			}
		case assistant.EventDone:
			finalText = ev.Text
		}

		if !h.writeJSON(ctx, ws, out) {
			return
		}
	}

	h.logConv(userID, sessionID, "inbound", "chat_assistant_message", finalText)
}

func (h *Handler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("failed to marshal websocket frame", "error", err)
		return false
	}
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("WebSocket write error", "error", err)
		return false
	}
	return true
}

func (h *Handler) logConv(userID, sessionID, direction, eventType, content string) {
	if h.convLog == nil {
		return
	}
	h.convLog.Log(assistant.ConversationLogEvent{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		UserID:     userID,
		SessionID:  sessionID,
		Channel:    "chat_ws",
		Direction:  direction,
		EventType:  eventType,
		ContentRaw: content,
	})
}
