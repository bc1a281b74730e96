package api

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pavanbh/career-oracle/internal/identity"
	"github.com/pavanbh/career-oracle/internal/resume"
)

// HandleResume handles POST /api/resume: accepts one uploaded resume as
// multipart form data under the "resume" field, extracts skills and streams
// the career-path analysis as SSE. Repeat uploads in the same session replay
// the cached analysis.
func (h *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}
	userID := identity.UserIDFromContext(r.Context())

	if !h.rateLimiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		Error(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		Error(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	mime := resumeMIME(header.Header.Get("Content-Type"), header.Filename)
	if !resume.Supported(mime) {
		Error(w, http.StatusUnsupportedMediaType, "only PDF and DOCX resumes are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		Error(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	slog.Info("resume upload",
		"user_id", userID,
		"session_id", identity.SessionIDFromContext(r.Context()),
		"filename", header.Filename,
		"mime", mime,
		"size", len(data),
		"replay", h.sessions.ResumeProcessed(key),
	)
	h.logEvent(r, "resume_http", "outbound", "resume_upload", header.Filename)

	flusher, ok := h.startSSE(w)
	if !ok {
		return
	}

	h.streamEvents(w, r, flusher, key, "resume_http", "resume_analysis",
		h.orch.AnalyzeResume(r.Context(), key, mime, data))
}

// resumeMIME resolves the upload's MIME type, falling back to the file
// extension when the browser sends a generic content type.
func resumeMIME(contentType, filename string) string {
	ct := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if resume.Supported(ct) {
		return ct
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return resume.MIMEPDF
	case ".docx":
		return resume.MIMEDocx
	}
	return ct
}
