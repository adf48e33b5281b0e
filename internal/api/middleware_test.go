package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/southbay/edlconv/internal/logging"
)

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var logs bytes.Buffer
	cfg := testConfig(t, false)
	cfg.Logger = logging.New(&logs, "info", "json")
	router := NewRouter(cfg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	requestID := rr.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("X-Request-ID header missing")
	}

	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if entry["msg"] != "http request" {
			continue
		}
		if entry["request_id"] != requestID {
			t.Errorf("request_id = %v, want %s", entry["request_id"], requestID)
		}
		return
	}
	t.Fatalf("no http request log entry in:\n%s", logs.String())
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.AuthToken = "s3cret-token"
	router := NewRouter(cfg)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret-token", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer s3cret-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/timecode/frames", strings.NewReader(`{"frames":24}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Errorf("status code = %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

func TestAuthMiddleware_HealthIsOpen(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.AuthToken = "s3cret-token"

	rr := httptest.NewRecorder()
	NewRouter(cfg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
}
