package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-course/internal/platform/cache"
)

type redisBackend struct {
	cache *cache.Cache
}

// NewRedisStore keeps state in Redis/Dragonfly under the cache prefix.
// Keys never expire.
func NewRedisStore(c *cache.Cache, opts ...Option) *KVStore {
	return newKVStore(&redisBackend{cache: c}, opts...)
}

func (r *redisBackend) get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.cache.Client.Get(ctx, r.cache.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (r *redisBackend) set(ctx context.Context, key string, value []byte) error {
	if err := r.cache.Client.Set(ctx, r.cache.Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (r *redisBackend) del(ctx context.Context, key string) error {
	if err := r.cache.Client.Del(ctx, r.cache.Key(key)).Err(); err != nil {
		return fmt.Errorf("del %q: %w", key, err)
	}
	return nil
}

func (r *redisBackend) ping(ctx context.Context) error {
	return r.cache.HealthCheck(ctx)
}
