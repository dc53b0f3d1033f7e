// Package limiter provides the optional request limiter layered over the
// login and recovery endpoints. The core authentication check carries no
// lockout policy of its own; this package is the isolation seam where one
// can be added without touching the lifecycle services.
package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/hoshinolab/fortune-gate/internal/config"
	"github.com/hoshinolab/fortune-gate/internal/logger"
	"github.com/redis/go-redis/v9"
)

// Limiter answers whether a keyed request may proceed.
type Limiter interface {
	// Allow reports whether the key is under its budget for the current
	// window and records the attempt.
	Allow(ctx context.Context, key string) bool
}

// New selects the implementation from configuration: Redis-backed when an
// address is set, otherwise a pass-through.
func New(cfg config.Redis, log *logger.Logger) Limiter {
	if cfg.Address == "" {
		return NoopLimiter{}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Address})
	return &redisLimiter{
		client: client,
		limit:  cfg.AttemptsPerMinute,
		window: time.Minute,
		log:    log,
	}
}

// NoopLimiter allows everything.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) bool { return true }

// redisLimiter counts attempts per key in fixed one-minute windows. It
// fails open: when Redis is unreachable the request proceeds, since
// availability of login outweighs the lost throttling.
type redisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	log    *logger.Logger
}

// NewRedisLimiter wires a limiter over an existing client. Used by tests.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, log *logger.Logger) Limiter {
	return &redisLimiter{client: client, limit: limit, window: window, log: log}
}

func (r *redisLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := fmt.Sprintf("limit:%s", key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		r.log.Err(err).Str("key", key).Msg("limiter unavailable, allowing request")
		return true
	}
	if count == 1 {
		if err = r.client.Expire(ctx, redisKey, r.window).Err(); err != nil {
			r.log.Err(err).Str("key", key).Msg("limiter window expiry not set")
		}
	}

	return count <= int64(r.limit)
}
