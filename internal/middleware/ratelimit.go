package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// clientIdleTimeout is how long a client must stay quiet before its bucket
// is dropped.
const clientIdleTimeout = 10 * time.Minute

// RateLimiter hands out one token bucket per client address. Every request
// pushes the bucket's expiry forward, so only idle clients are forgotten.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	clients *cache.Cache
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return newRateLimiter(rps, burst, clientIdleTimeout)
}

func newRateLimiter(rps float64, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		clients: cache.New(idle, idle/2),
	}
}

// Handler returns the middleware. Wire it after chimiddleware.RealIP so the
// client address reflects X-Forwarded-For.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lim := l.limiter(clientKey(r))
		if !lim.Allow() {
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := l.clients.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.clients.Set(key, lim, l.idle)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	// Add fails if a concurrent request created the bucket first.
	if err := l.clients.Add(key, lim, l.idle); err != nil {
		if v, ok := l.clients.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
