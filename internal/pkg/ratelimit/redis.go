// Package ratelimit counts requests per key in fixed windows stored in Redis,
// so every API instance shares the same budget.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Rule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}

// fixedWindowScript increments the window counter only while it is under the limit.
var fixedWindowScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or 0)
	local limit = tonumber(ARGV[1])
	local ttl = tonumber(ARGV[2])

	if current >= limit then
		return {0, 0}
	end

	current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('EXPIRE', KEYS[1], ttl)
	end
	return {1, limit - current}
`)

type RedisLimiter struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

// Allow implements Limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string, rule Rule) (Result, error) {
	windowSeconds := int64(rule.Window / time.Second)
	if windowSeconds < 1 {
		windowSeconds = 1
	}
	window := r.now().Unix() / windowSeconds
	windowKey := fmt.Sprintf("%s:%s:%d", r.prefix, key, window)

	values, err := fixedWindowScript.Run(ctx, r.client, []string{windowKey}, rule.Limit, windowSeconds+1).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	return parseResult(values, rule.Limit, time.Unix((window+1)*windowSeconds, 0))
}

func parseResult(values []int64, limit int, resetAt time.Time) (Result, error) {
	if len(values) != 2 {
		return Result{}, fmt.Errorf("rate limit: unexpected script reply %v", values)
	}
	return Result{
		Allowed:   values[0] == 1,
		Remaining: int(values[1]),
		Limit:     limit,
		ResetAt:   resetAt,
	}, nil
}
