package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/carousel-studio/internal/api/shared"
)

// MsgTooManyRequests is returned with 429 responses.
const MsgTooManyRequests = "Too many requests"

// Limiter decides whether a request from key fits its current window and
// reports when that window resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Time)
}

type bucket struct {
	count int
	until time.Time
}

// RateLimiter is an in-process fixed-window Limiter.
type RateLimiter struct {
	limit   int
	per     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewRateLimiter allows limit requests per client in every window of length
// per.
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	if per <= 0 {
		per = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		per:     per,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow records a request from key and reports whether it is within the limit,
// plus the time at which the current window resets.
func (l *RateLimiter) Allow(_ context.Context, key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.until) {
		l.prune(now)
		b = &bucket{until: now.Add(l.per)}
		l.buckets[key] = b
	}
	if b.count >= l.limit {
		return false, b.until
	}
	b.count++
	return true, b.until
}

// prune drops expired windows. Caller holds mu.
func (l *RateLimiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if !now.Before(b.until) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit rejects requests over limiter's quota, keyed by client IP, with
// 429 and a Retry-After header.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return rateLimit(limiter, time.Now)
}

func rateLimit(limiter Limiter, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, reset := limiter.Allow(r.Context(), clientIP(r))
			if !ok {
				retry := int(reset.Sub(now()).Seconds() + 0.999)
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, MsgTooManyRequests, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys requests by RemoteAddr, which chi's RealIP middleware has
// already resolved from forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
