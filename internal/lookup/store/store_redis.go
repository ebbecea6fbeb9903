package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"domainlens/internal/lookup/models"
	"domainlens/pkg/platform/sentinel"
)

const cacheKeyPrefix = "lookup:domain:"

// RedisStore shares the lookup cache across instances. Retention is enforced
// with key TTLs so cold entries disappear without a sweeper.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore builds a store over an existing client.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention}
}

// Get returns the entry for a domain or sentinel.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, domain string) (*models.CacheEntry, error) {
	raw, err := s.client.Get(ctx, cacheKeyPrefix+domain).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("no cache entry for %s: %w", domain, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores an entry with the retention TTL.
func (s *RedisStore) Set(ctx context.Context, domain string, entry *models.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, cacheKeyPrefix+domain, raw, s.retention).Err(); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry if present.
func (s *RedisStore) Delete(ctx context.Context, domain string) error {
	if err := s.client.Del(ctx, cacheKeyPrefix+domain).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}
