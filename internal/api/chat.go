package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pavanbh/career-oracle/internal/assistant"
	"github.com/pavanbh/career-oracle/internal/flowchart"
	"github.com/pavanbh/career-oracle/internal/identity"
	"github.com/pavanbh/career-oracle/internal/stream"
)

// defaultMaxRequestBodySize caps chat request bodies (1MB).
const defaultMaxRequestBodySize = 1 << 20

// ChatRequest is the POST /api/chat request body.
type ChatRequest struct {
	Message string `json:"message"`
}

// chatEvent is the SSE payload for one orchestrator event.
type chatEvent struct {
	Type  assistant.EventType `json:"type"`
	Text  string              `json:"text,omitempty"`
	Steps []string            `json:"steps,omitempty"`
	Graph *flowchart.Graph    `json:"graph,omitempty"`
	Dot   string              `json:"dot,omitempty"`
}

// HandleChat handles POST /api/chat: runs one conversational turn and
// streams the answer word-by-word as SSE events. The full answer is
// generated synchronously; the drip feed is presentation pacing only.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}
	userID := identity.UserIDFromContext(r.Context())

	if !h.rateLimiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	slog.Info("chat request",
		"user_id", userID,
		"session_id", identity.SessionIDFromContext(r.Context()),
		"message_length", len(req.Message),
	)
	h.logEvent(r, "chat_http", "outbound", "chat_user_message", req.Message)

	flusher, ok := h.startSSE(w)
	if !ok {
		return
	}

	h.streamEvents(w, r, flusher, key, "chat_http", "chat_assistant_message",
		h.orch.Turn(r.Context(), key, req.Message))
}

// startSSE sets stream headers and returns the flusher.
func (h *Handler) startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		Error(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}
	return flusher, true
}

// streamEvents paces orchestrator events onto an SSE stream.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request, flusher http.Flusher, key, channel, logEventType string, events func(func(*assistant.Event, error) bool)) {
	var finalText string

	for ev, err := range events {
		if err != nil {
			slog.Error("turn stream failed", "session_key", key, "error", err)
			if writeErr := writeSSE(w, "error", err.Error()); writeErr != nil {
				slog.Warn("failed to write SSE error event", "error", writeErr)
				return
			}
			flusher.Flush()
			return
		}

		payload := chatEvent{Type: ev.Type, Text: ev.Text, Steps: ev.Steps}
		switch ev.Type {
		case assistant.EventChunk:
			if waitErr := h.pacer.Wait(r.Context(), stream.Word); waitErr != nil {
				return
			}
		case assistant.EventBlockBreak:
			if waitErr := h.pacer.Wait(r.Context(), stream.BlockBreak); waitErr != nil {
				return
			}
		case assistant.EventFlowchart:
			if g := flowchart.Build(ev.Steps); !g.Empty() {
				payload.Graph = &g
				payload.Dot = g.DOT()
			}
		case assistant.EventDone:
			finalText = ev.Text
		}

		data, err := json.Marshal(payload)
		if err != nil {
			slog.Warn("failed to marshal chat event", "error", err)
			continue
		}
		if err := writeSSE(w, "message", string(data)); err != nil {
			slog.Warn("failed to write SSE message event", "error", err)
			return
		}
		flusher.Flush()
	}

	h.logEvent(r, channel, "inbound", logEventType, finalText)
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
