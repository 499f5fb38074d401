package cache

import (
	"context"
	"sync"
	"time"
)

// Store memoizes call results.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the cached data for key, or ErrCacheMiss.
	Get(ctx context.Context, key CallKey) ([]byte, error)

	// Put stores data under key.
	Put(ctx context.Context, key CallKey, data []byte) error
}

// Noop is the default Store: every lookup misses and writes are discarded.
type Noop struct{}

var _ Store = Noop{}

// Get always returns ErrCacheMiss.
func (Noop) Get(context.Context, CallKey) ([]byte, error) {
	return nil, ErrCacheMiss
}

// Put discards data.
func (Noop) Put(context.Context, CallKey, []byte) error {
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-process store. A ttl <= 0 keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]*Entry),
		ttl:     ttl,
	}
}

// Get returns the cached data for key, or ErrCacheMiss if absent or expired.
func (m *Memory) Get(_ context.Context, key CallKey) ([]byte, error) {
	k := key.String()

	m.mu.RLock()
	entry, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	if entry.IsExpired() {
		m.mu.Lock()
		if current, ok := m.entries[k]; ok && current == entry {
			delete(m.entries, k)
		}
		m.mu.Unlock()
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry.Data, nil
}

// Put stores a copy of data under key.
func (m *Memory) Put(_ context.Context, key CallKey, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.entries[key.String()] = newEntry(key, buf, m.ttl)
	m.mu.Unlock()

	CacheSize.WithLabelValues("memory").Add(float64(len(buf)))
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
