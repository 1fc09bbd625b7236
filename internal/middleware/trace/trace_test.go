package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"saldo/internal/log"
)

func newTestMiddleware(t *testing.T) (*Middleware, *bytes.Buffer, *[]string) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(log.Config{Component: log.ComponentHTTP, Output: &buf})
	var observed []string
	m := NewMiddleware(logger, func(*http.Request) string { return "198.51.100.1" }, func(route, status string, d time.Duration) {
		observed = append(observed, route+" "+status)
	})
	return m, &buf, &observed
}

func TestMiddleware_RequestIDAndObserver(t *testing.T) {
	m, buf, observed := newTestMiddleware(t)

	mux := http.NewServeMux()
	var seenID string
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		log.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	header := rec.Header().Get(HeaderRequestID)
	if !strings.HasPrefix(header, "req_") {
		t.Errorf("X-Request-ID = %q, want generated id", header)
	}
	if seenID != header {
		t.Errorf("context request id = %q, want %q", seenID, header)
	}
	if len(*observed) != 1 || (*observed)[0] != "GET /items/{id} 4xx" {
		t.Errorf("observed = %v", *observed)
	}
	out := buf.String()
	if !strings.Contains(out, "inside handler") || !strings.Contains(out, "request_id="+header) {
		t.Errorf("handler log line lacks request id: %s", out)
	}
	if !strings.Contains(out, "status_code=418") || !strings.Contains(out, "client_ip=198.51.100.1") {
		t.Errorf("completion log line missing fields: %s", out)
	}
}

func TestMiddleware_PropagatesValidRequestID(t *testing.T) {
	m, _, observed := newTestMiddleware(t)
	h := m.Middleware(http.NewServeMux())

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"valid", "abc-123", true},
		{"invalid characters", "abc 123\n", false},
		{"too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/missing", nil)
			req.Header.Set(HeaderRequestID, tt.incoming)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(HeaderRequestID)
			if (got == tt.incoming) != tt.keep {
				t.Errorf("X-Request-ID = %q, incoming %q, keep %v", got, tt.incoming, tt.keep)
			}
		})
	}
	if (*observed)[0] != "unmatched 4xx" {
		t.Errorf("observed route = %q, want unmatched 4xx", (*observed)[0])
	}
}
