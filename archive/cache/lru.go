// Package cache provides the bounded LRU cache of rendered articles.
package cache

import (
	"container/list"
	"sync"

	"github.com/Kush-Singh-26/lectern/archive/metrics"
	"github.com/Kush-Singh-26/lectern/archive/models"
)

// entry is the unit of ownership inside the cache. Eviction destroys it.
type entry struct {
	id      int
	article models.Article
}

// RenderCache is a fixed-capacity LRU cache keyed by article id.
// A direct-lookup map plus a doubly linked recency list keep every
// operation O(1); a single mutex guards the combined
// get/promote/put/evict sequence.
type RenderCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[int]*list.Element
	stats    *metrics.CacheStats
}

// New creates a cache holding at most capacity entries. Capacity must be
// positive; values below 1 are clamped to 1.
func New(capacity int, stats *metrics.CacheStats) *RenderCache {
	if capacity < 1 {
		capacity = 1
	}
	return &RenderCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[int]*list.Element, capacity),
		stats:    stats,
	}
}

// Get returns the cached article for id. A hit promotes the entry to
// most-recently-used and records a hit; a miss records a miss.
func (c *RenderCache) Get(id int) (models.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		c.stats.Miss()
		return models.Article{}, false
	}

	c.order.MoveToFront(el)
	c.stats.Hit()
	return el.Value.(*entry).article, true
}

// Peek returns the cached article without touching recency or stats.
func (c *RenderCache) Peek(id int) (models.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[id]
	if !ok {
		return models.Article{}, false
	}
	return el.Value.(*entry).article, true
}

// Put inserts or overwrites the article for id and marks it
// most-recently-used. If the insert exceeds capacity, exactly the
// least-recently-used entry is evicted.
func (c *RenderCache) Put(id int, article models.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		el.Value.(*entry).article = article
		c.order.MoveToFront(el)
		return
	}

	c.items[id] = c.order.PushFront(&entry{id: id, article: article})

	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the back of the recency list. Caller holds c.mu.
func (c *RenderCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).id)
}

// Invalidate removes the entry for id if present. Idempotent.
func (c *RenderCache) Invalidate(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[id]; ok {
		c.order.Remove(el)
		delete(c.items, id)
	}
}

// Clear removes all entries. Stats are left untouched; resetting them is a
// separate explicit operation.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.items)
}

// Len returns the number of cached entries.
func (c *RenderCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns the cached ids ordered from most to least recently used.
func (c *RenderCache) Keys() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]int, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).id)
	}
	return keys
}
