package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter counts submissions per caller in fixed one-minute windows. Each
// window gets its own key, so a counter can never leak into the next window
// even if the expiry is lost.
type RateLimiter struct {
	client            *Client
	requestsPerMinute int
	burst             int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client:            client,
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
	}
}

// Allow records one request for the caller and reports whether it fits the
// current window. Returns (allowed, remaining, resetTime, error).
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(time.Minute)
	windowEnd := windowStart.Add(time.Minute)
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, windowStart.Unix())

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, windowKey)
	// Keep the key one extra minute so late readers still see it.
	pipe.ExpireNX(ctx, windowKey, 2*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	limit := int64(r.requestsPerMinute + r.burst)
	count := incrCmd.Val()

	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, windowEnd, nil
}

// Reset clears the caller's counter in the current window.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Truncate(time.Minute).Unix())
	return r.client.rdb.Del(ctx, windowKey).Err()
}
