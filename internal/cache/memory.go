package cache

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// Memory is an in-process Cache. Entries are never evicted proactively:
// an entry older than the TTL is removed the next time it is read.
// There is no capacity bound.
type Memory[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a Memory cache. A non-positive ttl selects DefaultTTL.
func NewMemory[T any](ttl time.Duration) *Memory[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value stored under key if it is younger than the TTL.
func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if m.now().Sub(e.storedAt) >= m.ttl {
		delete(m.entries, key)
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (m *Memory[T]) Set(_ context.Context, key string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[T]{value: value, storedAt: m.now()}
}

var _ Cache[int] = (*Memory[int])(nil)
