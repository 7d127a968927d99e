package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines configuration for a fixed-window rate limit.
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of operations allowed in the window
	Limit int
	// KeyPrefix namespaces the Redis keys
	KeyPrefix string
}

// RateLimiter enforces a per-user fixed-window ceiling backed by Redis.
// The counter is incremented atomically; the window expiry is set only when
// the key has none yet, so later calls in the same window never push the
// reset point forward.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

func (rl *RateLimiter) key(id string) string {
	return fmt.Sprintf("%s:%s", rl.config.KeyPrefix, id)
}

// Limit returns the configured per-window ceiling.
func (rl *RateLimiter) Limit() int {
	return rl.config.Limit
}

// Allow increments the caller's counter and reports whether the operation is
// within the ceiling. Returns: allowed, remaining operations, reset time.
func (rl *RateLimiter) Allow(ctx context.Context, id string) (bool, int, time.Time, error) {
	key := rl.key(id)

	count, err := rl.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	ttl, err := rl.redis.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if ttl < 0 {
		// No expiry on the key: either this is the first hit of the window
		// or an earlier Expire failed and left the counter persistent. Set
		// it now; an existing expiry is never extended, so the window
		// cannot slide.
		if err := rl.redis.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, time.Time{}, err
		}
		ttl = rl.config.Window
	}

	remaining := rl.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	resetTime := time.Now().Add(ttl)

	return int(count) <= rl.config.Limit, remaining, resetTime, nil
}

// Remaining returns the number of operations left in the current window
// without incrementing the counter.
func (rl *RateLimiter) Remaining(ctx context.Context, id string) (int, error) {
	count, err := rl.redis.Get(ctx, rl.key(id)).Int()
	if err == redis.Nil {
		return rl.config.Limit, nil
	}
	if err != nil {
		return 0, err
	}
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// NewNotificationRateLimiter bounds AI content generation per user.
func NewNotificationRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:notify",
	})
}

// NewAnalysisRateLimiter bounds analysis submissions per user at the HTTP
// layer.
func NewAnalysisRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     60,
		KeyPrefix: "rate_limit:analysis",
	})
}
