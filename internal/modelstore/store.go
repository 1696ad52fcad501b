/*
Package modelstore persists model bundles as a single artifact.

Two backends are provided: FileStore writes a file atomically (temp file,
fsync, rename) and RedisStore keeps the artifact under one key. Both treat a
missing artifact as "nothing to load" and report unreadable artifacts as
*bundle.DeserializationError.
*/
package modelstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/khanglvm/supply-intel/internal/bundle"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is used when a redis destination has no key parameter.
const DefaultRedisKey = "supply-intel:model"

// Store saves and loads model bundles.
type Store interface {
	// Save replaces the artifact with b. A failed save leaves the previous artifact intact.
	Save(ctx context.Context, b *bundle.Bundle) error

	// Load returns the stored bundle, or nil and no error if none exists.
	Load(ctx context.Context) (*bundle.Bundle, error)

	// Location describes where the artifact lives.
	Location() string

	// Close releases backend resources.
	Close() error
}

// Open resolves a destination to a Store.
//
// Destinations of the form redis://[:password@]host:port/db?key=name select
// a RedisStore; anything else is treated as a file path.
func Open(destination string) (Store, error) {
	if destination == "" {
		return nil, fmt.Errorf("model destination is empty")
	}

	if !strings.HasPrefix(destination, "redis://") && !strings.HasPrefix(destination, "rediss://") {
		return NewFileStore(destination), nil
	}

	u, err := url.Parse(destination)
	if err != nil {
		return nil, fmt.Errorf("invalid redis destination: %w", err)
	}

	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = DefaultRedisKey
	}
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("invalid redis destination: %w", err)
	}

	return NewRedisStore(redis.NewClient(opts), key), nil
}
