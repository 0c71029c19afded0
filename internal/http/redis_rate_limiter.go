package httpx

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	redis "github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "wsflare:ratelimit:"
	redisDialTimeout = 2 * time.Second
	redisOpTimeout   = 250 * time.Millisecond
)

// RedisRateLimiter shares fixed windows across gateway replicas. When Redis
// is unreachable requests are allowed through and the failure is logged.
type RedisRateLimiter struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisRateLimiter connects to Redis and verifies the connection.
func NewRedisRateLimiter(addr, password string, db int, logger *slog.Logger) (*RedisRateLimiter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: redisDialTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis rate limiter %s: %w", addr, err)
	}
	return &RedisRateLimiter{
		client: client,
		logger: logger.With("component", "rate_limiter"),
	}, nil
}

// Allow increments the window counter for key. The first hit in a window
// sets its expiry; later hits read the remaining TTL in the same round trip.
func (rl *RedisRateLimiter) Allow(key string, limit int, window time.Duration) rateDecision {
	if limit <= 0 {
		return rateDecision{allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		rl.logger.Error("redis rate limiter error", "key", key, "error", err)
		return rateDecision{allowed: true}
	}
	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = window
	}
	count := int(incr.Val())
	return rateDecision{
		allowed:   count <= limit,
		count:     count,
		windowEnd: time.Now().Add(remaining),
	}
}

// Ping reports whether Redis answers, for health checks.
func (rl *RedisRateLimiter) Ping(ctx context.Context) error {
	return rl.client.Ping(ctx).Err()
}

func (rl *RedisRateLimiter) Close() {
	if err := rl.client.Close(); err != nil {
		rl.logger.Warn("redis close failed", "error", err)
	}
}
