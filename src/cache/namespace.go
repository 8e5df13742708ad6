package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Namespace is a typed view over a Store: every key gets the same prefix
// and every write the same TTL. Values are JSON encoded.
type Namespace[T any] struct {
	store  Store
	prefix string
	ttl    time.Duration
}

func NewNamespace[T any](store Store, prefix string, ttl time.Duration) *Namespace[T] {
	return &Namespace[T]{store: store, prefix: prefix, ttl: ttl}
}

func (n *Namespace[T]) TTL() time.Duration {
	return n.ttl
}

func (n *Namespace[T]) key(k string) string {
	return n.prefix + k
}

func (n *Namespace[T]) Put(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}
	return n.store.Set(ctx, n.key(key), data, n.ttl)
}

// Get reports false when the key is absent or expired.
func (n *Namespace[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var value T
	data, err := n.store.Get(ctx, n.key(key))
	if errors.Is(err, ErrMiss) {
		return value, false, nil
	}
	if err != nil {
		return value, false, err
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("failed to deserialize value: %w", err)
	}
	return value, true, nil
}

func (n *Namespace[T]) PutMany(ctx context.Context, values map[string]T) error {
	if len(values) == 0 {
		return nil
	}
	entries := make(map[string][]byte, len(values))
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to serialize value for %s: %w", k, err)
		}
		entries[n.key(k)] = data
	}
	return n.store.SetMany(ctx, entries, n.ttl)
}

// GetMany returns the present entries keyed without the prefix.
func (n *Namespace[T]) GetMany(ctx context.Context, keys []string) (map[string]T, error) {
	result := make(map[string]T, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.key(k)
	}
	found, err := n.store.GetMany(ctx, full)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		data, ok := found[full[i]]
		if !ok {
			continue
		}
		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("failed to deserialize value for %s: %w", k, err)
		}
		result[k] = value
	}
	return result, nil
}

func (n *Namespace[T]) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = n.key(k)
	}
	return n.store.Delete(ctx, full...)
}
