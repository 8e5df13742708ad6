package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports a key that is absent or expired.
var ErrMiss = errors.New("key does not exist")

// Store is a byte-level key/value backend with per-entry expiration.
// Entries are never renewed on read.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	// SetMany writes every entry with the same ttl.
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
	// GetMany omits absent keys from the result.
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
	Delete(ctx context.Context, keys ...string) error
}
