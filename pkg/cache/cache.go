// Package cache provides a generic, thread-safe TTL cache.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired() bool {
	return time.Now().After(e.expiresAt)
}

// TTL is a thread-safe cache whose entries expire after a fixed
// lifetime. Expired entries are dropped lazily on access and, when a
// cleanup interval is configured, by a background sweep.
type TTL[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry[V]

	stop chan struct{}
	once sync.Once
}

// NewTTL creates a cache with the given entry lifetime. A non-positive
// ttl disables the cache: entries expire immediately. A positive
// cleanupInterval starts a background sweep, stopped by Close; zero
// relies on lazy eviction alone.
func NewTTL[V any](ttl, cleanupInterval time.Duration) *TTL[V] {
	c := &TTL[V]{
		ttl:   ttl,
		items: make(map[string]entry[V]),
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.sweep(cleanupInterval)
	}
	return c
}

// Get retrieves a live value by key.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if e.expired() {
		c.mu.Lock()
		// Re-check under the write lock; Set may have raced in a
		// fresh entry.
		if current, still := c.items[key]; still && current.expired() {
			delete(c.items, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value. Its lifetime starts now.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes an entry. Returns true if the key was present.
func (c *TTL[V]) Delete(key string) bool {
	c.mu.Lock()
	_, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	return ok
}

// Len returns the number of stored entries, expired ones included
// until they are evicted.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes every entry.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.mu.Unlock()
}

// Close stops the background sweep, if one is running. Idempotent.
func (c *TTL[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *TTL[V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, e := range c.items {
				if e.expired() {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
