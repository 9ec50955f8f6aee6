package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter stores one counter per client and window in redis, so every
// instance pointing at the same server shares the limit.
type RedisLimiter struct {
	client *redis.Client
	policy Policy
	prefix string
}

// NewRedisLimiter creates a new RedisLimiter. Keys default to the
// "cryptopulse:ratelimit:" prefix.
func NewRedisLimiter(client *redis.Client, policy Policy, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "cryptopulse:ratelimit:"
	}
	return &RedisLimiter{client: client, policy: policy, prefix: prefix}
}

func (r *RedisLimiter) Check(ctx context.Context, clientID string) (Decision, error) {
	key := r.prefix + clientID

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, key, r.policy.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis pexpire %s: %w", key, err)
		}
	}
	if count <= int64(r.policy.MaxRequests) {
		return Decision{Allowed: true}, nil
	}

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis pttl %s: %w", key, err)
	}
	if ttl <= 0 {
		// Counter lost its expiry; restart the window.
		if err := r.client.PExpire(ctx, key, r.policy.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis pexpire %s: %w", key, err)
		}
		ttl = r.policy.Window
	}
	return Decision{RetryAfter: ttl}, nil
}

// Ping checks connectivity.
func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Sweep is a no-op: redis expires idle counters on its own.
func (r *RedisLimiter) Sweep(context.Context) (int, error) { return 0, nil }

// NewRedisClient builds a client from an address and optional password.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})
}
