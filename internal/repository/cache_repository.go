package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent from the cache.
var ErrCacheMiss = errors.New("repository: cache miss")

// CacheRepository stores JSON payloads in redis under a shared namespace.
type CacheRepository struct {
	client *redis.Client
	prefix string
}

// NewCacheRepository constructs a CacheRepository.
func NewCacheRepository(client *redis.Client, prefix string) *CacheRepository {
	if prefix == "" {
		prefix = "gympoint"
	}
	return &CacheRepository{client: client, prefix: prefix}
}

func (r *CacheRepository) key(k string) string {
	return r.prefix + ":" + k
}

// GetJSON loads and unmarshals a cached value into dest.
func (r *CacheRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache decode: %w", err)
	}
	return nil
}

// SetJSON marshals and stores a value with a TTL.
func (r *CacheRepository) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// DeleteByPrefix drops every key under the given sub-namespace. Used to
// invalidate the plan catalog after any plan write.
func (r *CacheRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := r.key(prefix) + "*"
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
