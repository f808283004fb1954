package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.9", "", "10.0.0.1:4000", "203.0.113.9"},
		{"forwarded chain", "203.0.113.9, 10.0.0.2", "", "10.0.0.1:4000", "203.0.113.9"},
		{"real ip", "", "203.0.113.10", "10.0.0.1:4000", "203.0.113.10"},
		{"remote addr", "", "", "203.0.113.11:52810", "203.0.113.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}

			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestRateLimitAuth(t *testing.T) {
	s := &Server{
		logger:          slog.New(slog.NewTextHandler(&nullWriter{}, nil)),
		authRateLimiter: NewRateLimiter(2, time.Minute, 2),
	}
	t.Cleanup(s.authRateLimiter.Stop)

	handler := s.rateLimitAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.RemoteAddr = "203.0.113.9:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	// Within the burst.
	assert.Equal(t, http.StatusOK, do("/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusOK, do("/api/v1/auth/login").Code)

	// Exhausted.
	w := do("/api/v1/auth/login")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "1", envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "RATE_LIMITED", envelope.Code)

	// Non-auth paths are never limited.
	assert.Equal(t, http.StatusOK, do("/api/v1/blogs").Code)
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
