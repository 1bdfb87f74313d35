package utils

import "sync"

// Cache memoises values built on first use, such as per-model binding
// metadata. Entries are never evicted; Reset drops all of them.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the value stored for key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	return v, ok
}

// GetOrCreate returns the value stored for key, building it with create on a
// miss. create runs without the lock held, so racing callers may each build a
// value; only the first one stored is ever returned.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	built := create()

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v
	}
	c.entries[key] = built
	return built
}

// Size returns the number of stored entries
func (c *Cache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every entry
func (c *Cache[K, V]) Reset() {
	c.mu.Lock()
	c.entries = make(map[K]V)
	c.mu.Unlock()
}
