// Package ratelimit provides a Redis-backed fixed-window request limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script for an atomic check-and-increment of one window counter
const windowLuaScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])

local current = tonumber(redis.call("GET", key) or "0")

if current + 1 > limit then
    return {0, current}  -- denied
end

local newVal = redis.call("INCR", key)
if newVal == 1 then
    redis.call("EXPIRE", key, ttl)
end

return {1, newVal}  -- allowed
`

// Limiter allows at most limit requests per client key in each window.
type Limiter struct {
	redis  *redis.Client
	script *redis.Script
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// New creates a limiter. prefix namespaces the counters so that several
// limiters can share one Redis database.
func New(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		redis:  client,
		script: redis.NewScript(windowLuaScript),
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records one request for key. When the window is exhausted it returns
// false and the time left until the next window opens.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	now := l.now()
	bucket := now.UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", l.prefix, key, bucket)
	ttl := int64(2 * l.window / time.Second)
	if ttl < 1 {
		ttl = 1
	}

	result, err := l.script.Run(ctx, l.redis, []string{redisKey}, l.limit, ttl).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit check failed: %w", err)
	}

	if result[0].(int64) == 1 {
		return true, 0, nil
	}
	windowEnd := time.Unix(0, (bucket+1)*int64(l.window))
	return false, windowEnd.Sub(now), nil
}
