package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsUpToRateThenBlocks(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Truef(t, rl.Allow("k"), "request %d should have been allowed", i)
	}
	assert.False(t, rl.Allow("k"), "4th request within the interval should have been blocked")
}

func TestRateLimiterTracksKeysIndependently(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	require.True(t, rl.Allow("a"), "first request for key a should be allowed")
	require.True(t, rl.Allow("b"), "first request for key b should be allowed, independent of a's bucket")
	assert.False(t, rl.Allow("a"), "second request for key a should be blocked")
}

func TestRateLimiterResetsAfterInterval(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	require.True(t, rl.Allow("k"), "first request should be allowed")
	require.False(t, rl.Allow("k"), "second request before the interval elapses should be blocked")

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("k"), "request after the interval elapses should be allowed again")
}

func TestMiddlewareRejectsOverLimitWithRetryAfter(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(func(*http.Request) string { return "fixed-key" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/s1/inject", nil)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestIPKeyFuncPrefersForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	assert.Equal(t, "10.0.0.9", IPKeyFunc(req))

	req.Header.Set("X-Real-IP", "192.168.1.1")
	assert.Equal(t, "192.168.1.1", IPKeyFunc(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", IPKeyFunc(req))
}
