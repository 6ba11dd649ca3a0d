package cache

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/vanshika/linktrace/backend/internal/metrics"
)

// LoadFunc produces the value for a missing key. store reports whether the
// value may be written to the memo.
type LoadFunc[V any] func() (value V, store bool)

// Memo is an exact-key, insert-only cache. Entries are never evicted or
// replaced once written, so a value returned for a key stays the same for
// the lifetime of the Memo.
//
// Memo is safe for concurrent use. Concurrent misses on the same key share a
// single loader call.
type Memo[V any] struct {
	name    string
	mu      sync.RWMutex
	entries map[string]V
	flight  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of memo counters.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// New creates an empty Memo. name labels its metrics.
func New[V any](name string) *Memo[V] {
	return &Memo[V]{
		name:    name,
		entries: make(map[string]V),
	}
}

// Get returns the stored value for key.
func (m *Memo[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		m.hits.Add(1)
		metrics.CacheLookups.WithLabelValues(m.name, "hit").Inc()
	} else {
		m.misses.Add(1)
		metrics.CacheLookups.WithLabelValues(m.name, "miss").Inc()
	}
	return v, ok
}

// Put stores value under key unless the key is already present. It returns
// the value held by the memo afterwards.
func (m *Memo[V]) Put(key string, value V) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.entries[key]; ok {
		return existing
	}
	m.entries[key] = value
	return value
}

// Load returns the value for key, running load on a miss. Callers racing on
// the same missing key wait for one loader and receive its result. The
// boolean reports whether the value came from the memo.
func (m *Memo[V]) Load(key string, load LoadFunc[V]) (V, bool) {
	if v, ok := m.Get(key); ok {
		return v, true
	}

	res, _, _ := m.flight.Do(key, func() (any, error) {
		m.mu.RLock()
		v, ok := m.entries[key]
		m.mu.RUnlock()
		if ok {
			return v, nil
		}
		value, store := load()
		if store {
			value = m.Put(key, value)
		}
		return value, nil
	})
	return res.(V), false
}

// Len returns the number of stored entries.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Stats returns a snapshot of entry and lookup counts.
func (m *Memo[V]) Stats() Stats {
	return Stats{
		Entries: m.Len(),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}
