package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webx403/webx403-go/ports"
)

// RedisStore is a Redis implementation of the ReplayStore interface for
// deployments where several instances must share one replay horizon.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis replay store on an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "webx403:replay:",
	}
}

// NewRedisStoreFromURL connects to Redis at url and verifies the
// connection before returning the store.
func NewRedisStoreFromURL(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// CheckAndReserve reserves key for ttl using SETNX, which is atomic on
// the Redis side, so exactly one caller across all instances wins.
func (s *RedisStore) CheckAndReserve(ctx context.Context, key string, ttl time.Duration) (ports.ReplayOutcome, error) {
	reserved, err := s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
	if err != nil {
		return ports.ReplayAlreadyUsed, fmt.Errorf("failed to reserve nonce: %w", err)
	}
	if !reserved {
		return ports.ReplayAlreadyUsed, nil
	}
	return ports.ReplayFresh, nil
}

// Close releases the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
