package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// A client that keeps hitting the limiter must not get a fresh burst when
// its bucket's original expiry passes.
func TestRateLimiter_BusyClientKeepsItsBucket(t *testing.T) {
	const idle = 60 * time.Millisecond
	h := newRateLimiter(0.1, 1, idle).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	hit := func() int {
		req := httptest.NewRequest(http.MethodGet, "/trips", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, hit())
	deadline := time.Now().Add(3 * idle)
	for time.Now().Before(deadline) {
		time.Sleep(idle / 4)
		require.Equal(t, http.StatusTooManyRequests, hit())
	}
}

// A client that goes quiet for longer than the idle timeout starts over.
func TestRateLimiter_IdleClientIsForgotten(t *testing.T) {
	const idle = 30 * time.Millisecond
	l := newRateLimiter(0.1, 1, idle)
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	hit := func() int {
		req := httptest.NewRequest(http.MethodGet, "/trips", nil)
		req.RemoteAddr = "10.0.0.10:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, hit())
	require.Equal(t, http.StatusTooManyRequests, hit())
	time.Sleep(3 * idle)
	require.Equal(t, http.StatusOK, hit())
}
