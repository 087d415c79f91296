// Package cache provides a small LRU cache for embedding vectors, so repeated
// recall queries do not re-hit the embedding provider.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// EmbeddingCache is an LRU cache with TTL support keyed by input text.
type EmbeddingCache struct {
	capacity   int
	defaultTTL time.Duration
	mu         sync.Mutex

	cache map[string]*entry
	order *list.List // doubly linked list for LRU ordering
}

type entry struct {
	key       string
	vector    []float32
	expiresAt time.Time
	element   *list.Element
}

// NewEmbeddingCache creates a new embedding cache.
func NewEmbeddingCache(capacity int, defaultTTL time.Duration) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 256
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	return &EmbeddingCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		cache:      make(map[string]*entry),
		order:      list.New(),
	}
}

// Get retrieves a vector from the cache.
func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.cache[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.removeEntry(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return e.vector, true
}

// Set stores a vector in the cache, evicting the least recently used entry
// when capacity is exceeded.
func (c *EmbeddingCache) Set(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.cache[key]; ok {
		e.vector = vector
		e.expiresAt = time.Now().Add(c.defaultTTL)
		c.order.MoveToFront(e.element)
		return
	}

	e := &entry{
		key:       key,
		vector:    vector,
		expiresAt: time.Now().Add(c.defaultTTL),
	}
	e.element = c.order.PushFront(e)
	c.cache[key] = e

	for len(c.cache) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeEntry(oldest.Value.(*entry))
	}
}

// Len returns the number of live entries.
func (c *EmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *EmbeddingCache) removeEntry(e *entry) {
	c.order.Remove(e.element)
	delete(c.cache, e.key)
}
