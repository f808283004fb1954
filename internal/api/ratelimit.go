package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/flashblog/flashblog-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// rate: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// rateLimitAuth limits requests to the auth endpoints by client IP.
// Credential endpoints are the brute-force target; everything else
// passes through untouched.
func (s *Server) rateLimitAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		key := getClientIP(r)
		if !s.authRateLimiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			writeRateLimited(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeRateLimited writes a 429 envelope directly. Rate limiting runs
// before huma, so the transformer never sees this response.
func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(Envelope{
		Version: envelopeVersion,
		Success: false,
		Error:   "Too many requests. Please try again later.",
		Code:    string(domainerrors.CodeRateLimited),
		Message: "Too many requests. Please try again later.",
	})
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For (may contain multiple IPs, first is client).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in the chain.
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
