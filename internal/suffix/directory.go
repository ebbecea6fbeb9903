package suffix

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"domainlens/pkg/platform/sentinel"
)

const directoryKeyPrefix = "whoisdir:"

// RedisDirectory reads the remotely-synced WHOIS directory table. An external
// sync job maintains the keys; this process only reads them. The static table
// in this package supplements the directory and wins on conflict.
type RedisDirectory struct {
	client *redis.Client
}

// NewRedisDirectory wraps a Redis client as a Directory.
func NewRedisDirectory(client *redis.Client) *RedisDirectory {
	return &RedisDirectory{client: client}
}

// Host returns the WHOIS host for a suffix, or sentinel.ErrNotFound.
func (d *RedisDirectory) Host(ctx context.Context, sfx string) (string, error) {
	host, err := d.client.Get(ctx, directoryKeyPrefix+sfx).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("directory get %q: %w", sfx, err)
	}
	return host, nil
}
