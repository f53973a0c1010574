package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills continuously at one token per refill_ms and stores
// the bucket as a hash that expires once it would be full again.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_ms = tonumber(ARGV[3])

local state = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = capacity
  ts = now_ms
end

local elapsed = math.max(0, now_ms - ts)
tokens = math.min(capacity, tokens + elapsed / refill_ms)

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  retry_ms = math.ceil((1 - tokens) * refill_ms)
end

local full_ms = math.ceil((capacity - tokens) * refill_ms)
redis.call('HSET', key, 'tokens', tostring(tokens), 'ts', now_ms)
redis.call('PEXPIRE', key, math.max(full_ms, 1000))

return { allowed, math.floor(tokens), retry_ms, full_ms }
`)

// RedisLimiter evaluates the bucket atomically inside Redis.
type RedisLimiter struct {
	client    redis.UniversalClient
	capacity  int
	refillPer time.Duration
	prefix    string
	now       func() time.Time
}

// NewRedis builds a limiter holding capacity tokens per key that regains one
// token every refillPer.
func NewRedis(client redis.UniversalClient, capacity int, refillPer time.Duration) *RedisLimiter {
	if capacity < 1 {
		capacity = 1
	}
	if refillPer <= 0 {
		refillPer = time.Second
	}
	return &RedisLimiter{
		client:    client,
		capacity:  capacity,
		refillPer: refillPer,
		prefix:    "frontdesk:ratelimit:",
		now:       time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := l.now()
	vals, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + key},
		now.UnixMilli(), l.capacity, l.refillPer.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket: %w", err)
	}
	if len(vals) != 4 {
		return nil, fmt.Errorf("token bucket returned %d values", len(vals))
	}
	return &Result{
		Allowed:    vals[0] == 1,
		Limit:      l.capacity,
		Remaining:  int(math.Max(0, float64(vals[1]))),
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
		ResetAt:    now.Add(time.Duration(vals[3]) * time.Millisecond),
	}, nil
}
