package redisstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/carousel-studio/internal/platform/logger"
	"github.com/redis/go-redis/v9"
)

const rateLimitTimeout = 2 * time.Second

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimiter is a fixed-window limiter whose counters live in Redis, so
// every server sharing the instance enforces one quota per client.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per key in every window. A
// non-positive window is treated as one minute.
func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "carousel"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// RateLimiter returns a limiter sharing the store's connection and key prefix.
func (s *JobStore) RateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(s.client, s.prefix, limit, window)
}

// Allow counts a request from key and reports whether it is within quota,
// plus the end of the current window. Redis errors fail closed.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Time) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	slot := l.now().UnixMilli() / windowMs
	reset := time.UnixMilli((slot + 1) * windowMs)

	ctx, cancel := context.WithTimeout(ctx, rateLimitTimeout)
	defer cancel()

	count, err := fixedWindowScript.Run(ctx, l.client, []string{l.key(key, slot)}, windowMs).Int64()
	if err != nil {
		logger.FromContext(ctx).Warn("rate limit check failed, rejecting request",
			"key", key,
			"error", err)
		return false, reset
	}
	return count <= int64(l.limit), reset
}

func (l *RateLimiter) key(client string, slot int64) string {
	return fmt.Sprintf("%s:ratelimit:%s:%d", l.prefix, client, slot)
}
