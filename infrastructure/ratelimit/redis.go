package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Atomic sliding window over a ZSET. One round trip per decision.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local expiry = tonumber(ARGV[4])

local windowStart = now - window
redis.call('ZREMRANGEBYSCORE', key, 0, windowStart)

local currentCount = redis.call('ZCARD', key)

redis.call('ZADD', key, now, now)
redis.call('EXPIRE', key, expiry)

local allowed = currentCount < limit

return allowed and 1 or 0
`

// RedisLimiter shares the window across server instances.
type RedisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()

	result, err := l.client.Eval(ctx, slidingWindowScript,
		[]string{fmt.Sprintf("ratelimit:%s", key)},
		now.UnixNano(),
		l.window.Nanoseconds(),
		l.requests,
		int(l.window.Seconds())+60,
	).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}

	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected rate limit script result: %T", result)
	}
	return allowed == 1, nil
}
