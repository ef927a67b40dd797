package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisCache implements Cache on a single Redis instance. Only catalogue
// reads go through it; cart and order state is never cached.
type redisCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisCache creates a Redis-backed cache and verifies connectivity.
func NewRedisCache(ctx context.Context, addr string, logger zerolog.Logger) (Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	logger.Info().Str("addr", addr).Msg("redis cache initialised")

	return &redisCache{
		client: client,
		logger: logger.With().Str("component", "redis-cache").Logger(),
	}, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (c *redisCache) Key(kind, id string) string {
	return fmt.Sprintf("bookmart:%s:%s", kind, id)
}
