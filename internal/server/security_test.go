package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	// 5 reqs/sec, 10 reqs/min, 1s ban
	rl := NewRateLimiter(5, 10, 1*time.Second)
	defer rl.Stop()
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "Request %d should be allowed", i)
	}
	assert.False(t, rl.Allow(ip), "6th request should be blocked")
	assert.True(t, rl.IsBanned(ip), "IP should be banned")
	assert.False(t, rl.IsBanned("10.0.0.1"))

	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

func TestOriginChecker_AllowAll(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"*"})
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")

	assert.True(t, oc.Check(req))
}

func TestOriginChecker_SpecificOrigins(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://example.com", "https://app.example.com"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://example.com", true},
		{"https://APP.example.com", true},
		{"https://evil.com", false},
		{"http://example.com", false}, // Different scheme
		{"", true},                    // No origin header (same-origin or local)
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.allowed, oc.Check(req), "Origin: %s", tt.origin)
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", GetClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", GetClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", GetClientIP(req))
}
