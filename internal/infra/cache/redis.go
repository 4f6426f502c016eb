package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a JSON-encoding cache backed by Redis. Values expire after the
// configured TTL. Redis failures degrade to cache misses.
type Redis[T any] struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis creates a Redis cache whose keys are prefixed with prefix.
func NewRedis[T any](rdb redis.UniversalClient, prefix string, ttl time.Duration, logger *zap.Logger) *Redis[T] {
	return &Redis[T]{rdb: rdb, prefix: prefix, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (c *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache: redis get failed", zap.String("key", key), zap.Error(err))
		}
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn("cache: corrupt redis entry", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}

func (c *Redis[T]) Set(ctx context.Context, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache: encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache: redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Redis[T]) Delete(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.Warn("cache: redis delete failed", zap.String("key", key), zap.Error(err))
	}
}
