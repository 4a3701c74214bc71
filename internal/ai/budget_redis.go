package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBudget keeps token usage in Redis/Dragonfly so it survives restarts.
type RedisBudget struct {
	client redis.Cmdable
	prefix string
	limit  int64
}

// NewRedisBudget tracks usage under prefix with a single limit for every key
// (0 = unlimited).
func NewRedisBudget(client redis.Cmdable, prefix string, limit int64) *RedisBudget {
	return &RedisBudget{client: client, prefix: prefix, limit: limit}
}

func (b *RedisBudget) usageKey(key string) string {
	return b.prefix + "budget:" + key
}

func (b *RedisBudget) used(ctx context.Context, key string) (int64, error) {
	n, err := b.client.Get(ctx, b.usageKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read token usage: %w", err)
	}
	return n, nil
}

func (b *RedisBudget) Check(ctx context.Context, key string) (bool, error) {
	if b.limit <= 0 {
		return true, nil
	}
	used, err := b.used(ctx, key)
	if err != nil {
		return false, err
	}
	return used < b.limit, nil
}

func (b *RedisBudget) Record(ctx context.Context, key string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}
	if err := b.client.IncrBy(ctx, b.usageKey(key), int64(tokens)).Err(); err != nil {
		return fmt.Errorf("record token usage: %w", err)
	}
	return nil
}

func (b *RedisBudget) Usage(ctx context.Context, key string) (int64, int64, error) {
	used, err := b.used(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	return used, b.limit, nil
}
