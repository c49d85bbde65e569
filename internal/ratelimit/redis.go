package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "authly:ratelimit:"

type redisLimiter struct {
	client  *redis.Client
	logger  *slog.Logger
	timeout time.Duration
}

// NewRedisLimiter shares counters between instances through Redis. Redis
// errors fail open: the attempt is allowed and the error is logged.
func NewRedisLimiter(addr, password string, db int, logger *slog.Logger) (Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &redisLimiter{
		client:  client,
		logger:  logger,
		timeout: 250 * time.Millisecond,
	}, nil
}

func (rl *redisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logger.Error("redis rate limiter error", "op", "incr", "error", err)
		return Decision{Allowed: true}
	}

	ttl, err := rl.client.PTTL(ctx, redisKey).Result()
	if err != nil {
		rl.logger.Error("redis rate limiter error", "op", "pttl", "error", err)
		ttl = window
	}
	// -1 means the key has no expiry yet: first hit, or an earlier EXPIRE was lost.
	if counter == 1 || ttl < 0 {
		if err := rl.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			rl.logger.Error("redis rate limiter error", "op", "expire", "error", err)
		}
		ttl = window
	}

	return Decision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: time.Now().Add(ttl),
	}
}

func (rl *redisLimiter) Close() error {
	return rl.client.Close()
}
