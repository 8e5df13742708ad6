package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process. It serves single-process
// deployments and tests.
type MemoryStore struct {
	items *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.items.Set(key, value, expiration(ttl))
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v.([]byte), nil
}

func (m *MemoryStore) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	for k, v := range entries {
		m.items.Set(k, v, expiration(ttl))
	}
	return nil
}

func (m *MemoryStore) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := m.items.Get(k); ok {
			result[k] = v.([]byte)
		}
	}
	return result, nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.items.Delete(k)
	}
	return nil
}

// go-cache treats 0 as "use the default", which is NoExpiration here.
func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
