package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const window = time.Minute

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

// Limiter decides whether another trigger action may start now.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Noop allows everything. It is used when no Redis is configured.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true, Remaining: -1, Limit: -1}, nil
}

// RedisLimiter counts actions per key in fixed one-minute windows.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	now    func() time.Time
}

// NewRedisLimiter creates a limiter allowing limit actions per key per minute.
func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, now: time.Now}
}

// Allow increments the counter for key in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := now.Truncate(window)
	redisKey := windowKey(key, start)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}
	// Expire only on the first hit so the window is not extended.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, 2*window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return decide(count, l.limit, start.Add(window).Sub(now)), nil
}

func windowKey(key string, start time.Time) string {
	return fmt.Sprintf("panel:rl:%s:%s", key, start.UTC().Format("200601021504"))
}

func decide(count int64, limit int, untilReset time.Duration) Decision {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		Limit:     limit,
	}
	if !d.Allowed {
		d.RetryAfter = untilReset
	}
	return d
}
