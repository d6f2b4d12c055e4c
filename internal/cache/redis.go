package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mediashare/pkg/domain"
)

const listingKey = "media:listing"

// RedisCache keeps the listing snapshot in Redis under a single key with a
// server-side TTL. Atomic replace semantics come from Redis itself: SET writes
// value and expiry together.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a Redis-backed listing cache.
func NewRedisCache(addr, password string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: TTL,
	}
}

// Get returns the snapshot while the key has not expired.
func (c *RedisCache) Get() ([]domain.MediaRecord, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	raw, err := c.client.Get(ctx, listingKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var snapshot []domain.MediaRecord
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, false, err
	}
	return snapshot, true, nil
}

// Set replaces the snapshot and restarts the TTL.
func (c *RedisCache) Set(snapshot []domain.MediaRecord) error {
	if snapshot == nil {
		snapshot = []domain.MediaRecord{}
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return c.client.Set(ctx, listingKey, raw, c.ttl).Err()
}

// Invalidate deletes the snapshot key.
func (c *RedisCache) Invalidate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.client.Del(ctx, listingKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
