package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisIdempotencyPrefix = "idempotency:"
	redisPendingValue      = "pending"
)

// RedisIdempotencyStore shares idempotency keys between replicas.
type RedisIdempotencyStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewRedisIdempotencyStore keeps in-flight claims for pendingTTL so a crashed
// request does not block its key for the full ttl.
func NewRedisIdempotencyStore(client *redis.Client, ttl, pendingTTL time.Duration) *RedisIdempotencyStore {
	if pendingTTL <= 0 || pendingTTL > ttl {
		pendingTTL = ttl
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl, pendingTTL: pendingTTL}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool, error) {
	val, err := s.client.Get(ctx, redisIdempotencyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get idempotency key from redis: %w", err)
	}
	if val == redisPendingValue {
		return nil, false, nil
	}

	var cached CachedResponse
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	return &cached, true, nil
}

func (s *RedisIdempotencyStore) Begin(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, redisIdempotencyPrefix+key, redisPendingValue, s.pendingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key in redis: %w", err)
	}
	return ok, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) error {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal cached response: %w", err)
	}
	if err := s.client.Set(ctx, redisIdempotencyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set idempotency key in redis: %w", err)
	}
	return nil
}

func (s *RedisIdempotencyStore) Abort(ctx context.Context, key string) error {
	k := redisIdempotencyPrefix + key
	val, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read idempotency key from redis: %w", err)
	}
	if val != redisPendingValue {
		return nil
	}
	if err := s.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key in redis: %w", err)
	}
	return nil
}

// Stop is a no-op; the client is owned and closed by pkg/client.
func (s *RedisIdempotencyStore) Stop() {}
