package availability

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Cache is the minimal key/value surface the cached gate needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

type gate interface {
	IsAvailable(ctx context.Context, providerID int64) (bool, error)
}

// CachedGate memoizes availability answers for ttl. Cache failures fall
// through to the inner gate.
type CachedGate struct {
	inner  gate
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedGate(inner gate, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedGate {
	return &CachedGate{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(providerID int64) string {
	return "work_status:" + strconv.FormatInt(providerID, 10)
}

func (g *CachedGate) IsAvailable(ctx context.Context, providerID int64) (bool, error) {
	key := cacheKey(providerID)

	v, ok, err := g.cache.Get(ctx, key)
	switch {
	case err != nil:
		g.logger.Warn("availability cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		return v == "1", nil
	}

	available, err := g.inner.IsAvailable(ctx, providerID)
	if err != nil {
		return false, err
	}

	value := "0"
	if available {
		value = "1"
	}
	if err := g.cache.Set(ctx, key, value, g.ttl); err != nil {
		g.logger.Warn("availability cache write failed", zap.String("key", key), zap.Error(err))
	}
	return available, nil
}

// Invalidate drops the cached answer after a status change.
func (g *CachedGate) Invalidate(ctx context.Context, providerID int64) {
	if err := g.cache.Del(ctx, cacheKey(providerID)); err != nil {
		g.logger.Warn("availability cache invalidate failed", zap.Int64("stylist_id", providerID), zap.Error(err))
	}
}
