// internal/prefs/memory.go
//
// In-memory implementation of the KV substrate.
// This is a lightweight persistence layer used for ephemeral sessions,
// primarily in development/testing, or when durability is not required.
//
// Characteristics:
//   - Stores value bytes keyed by string in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - ErrNotFound is returned for missing keys on Get().

package prefs

import (
	"sort"
	"strings"
	"sync"
)

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu     sync.RWMutex      // guards values map
	values map[string][]byte // keyed by caller-supplied string
}

// NewMemory constructs a new in-memory KV.
func NewMemory() KV {
	return &memory{values: make(map[string][]byte)}
}

// Set adds or updates the value in the map. The bytes are copied so later
// caller mutations cannot leak into the store.
func (m *memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.values[key] = cp
	return nil
}

// Get looks up a value by key.
func (m *memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		cp := make([]byte, len(v))
		copy(cp, v)
		return cp, nil
	}
	return nil, ErrNotFound
}

// Delete removes a key; missing keys are ignored.
func (m *memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Keys returns the sorted keys matching the prefix.
func (m *memory) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
