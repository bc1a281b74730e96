package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, allowed []string, origin, method string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(allowed)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(method, "/api/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsExplicitOrigin(t *testing.T) {
	w := serve(t, []string{"https://oracle.example.com"}, "https://oracle.example.com", http.MethodGet)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://oracle.example.com" {
		t.Errorf("Expected origin echoed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Expected credentials allowed for explicit origin, got %q", got)
	}
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	w := serve(t, []string{"*"}, "https://anywhere.example.com", http.MethodGet)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Errorf("Expected origin echoed for wildcard, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Expected no credentials header for wildcard match, got %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	w := serve(t, []string{"https://oracle.example.com"}, "https://evil.example.com", http.MethodGet)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS headers for unknown origin, got %q", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	w := serve(t, []string{"*"}, "https://anywhere.example.com", http.MethodOptions)

	if w.Code != http.StatusOK {
		t.Errorf("Expected preflight to return 200, got %d", w.Code)
	}
}
