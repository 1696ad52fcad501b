package modelstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/khanglvm/supply-intel/internal/bundle"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the artifact as a single redis string value, so a save
// is one atomic SET and concurrent readers see either artifact in full.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store writing to key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Location returns the redis address and key.
func (s *RedisStore) Location() string {
	return fmt.Sprintf("redis://%s/%d?key=%s", s.client.Options().Addr, s.client.Options().DB, s.key)
}

// Save stores the encoded bundle under the key.
func (s *RedisStore) Save(ctx context.Context, b *bundle.Bundle) error {
	data, err := bundle.Encode(b)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store model artifact in redis: %w", err)
	}

	return nil
}

// Load fetches the bundle. A missing key returns nil, nil.
func (s *RedisStore) Load(ctx context.Context) (*bundle.Bundle, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch model artifact from redis: %w", err)
	}

	return bundle.Decode(s.Location(), data)
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
