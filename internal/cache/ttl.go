// Package cache provides a bounded LRU cache with per-entry expiry.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is the capability upstream clients use to memoize fetched values.
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
}

// TTLCache is an LRU cache whose entries also expire after their TTL.
// A capacity of 0 means unbounded.
type TTLCache[V any] struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	now      func() time.Time
	mu       sync.Mutex
}

type cacheEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time // zero means no expiry
}

// Option configures a TTLCache.
type Option[V any] func(*TTLCache[V])

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *TTLCache[V]) { c.now = now }
}

// New creates a cache holding at most capacity entries.
func New[V any](capacity int, opts ...Option[V]) *TTLCache[V] {
	c := &TTLCache[V]{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key if present and not expired.
// Expired entries are removed on access.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.cache[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*cacheEntry[V])
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.lru.Remove(elem)
		delete(c.cache, key)
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return entry.value, true
}

// Set stores value for key. A ttl <= 0 stores the value without expiry.
// The least recently used entry is evicted when the cache is over capacity.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	elem := c.lru.PushFront(&cacheEntry[V]{key: key, value: value, expiresAt: expiresAt})
	c.cache[key] = elem

	if c.capacity > 0 && c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry[V]).key)
		}
	}
}

// Delete removes key from the cache.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.lru.Remove(elem)
		delete(c.cache, key)
	}
}

// Clear removes every entry.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of entries, including ones that expired but were not yet accessed.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
