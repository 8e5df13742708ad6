package utils

import (
	"sync"
	"time"
)

// Memo keeps one computed value for a fixed TTL. Invalidate bumps a
// generation, and Store drops values computed under an older one, so a
// read racing a refresh cannot put stale data back.
type Memo[T any] struct {
	mu        sync.RWMutex
	ttl       time.Duration
	value     T
	expiresAt time.Time
	gen       uint64
}

func NewMemo[T any](ttl time.Duration) *Memo[T] {
	return &Memo[T]{ttl: ttl}
}

// Load returns the live value, if any, and the generation to hand back
// to Store once a fresh value has been computed.
func (m *Memo[T]) Load(now time.Time) (T, uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if now.Before(m.expiresAt) {
		return m.value, m.gen, true
	}
	var zero T
	return zero, m.gen, false
}

// Store reports whether value was kept.
func (m *Memo[T]) Store(value T, gen uint64, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.value = value
	m.expiresAt = now.Add(m.ttl)
	return true
}

func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.expiresAt = time.Time{}
	m.gen++
}
