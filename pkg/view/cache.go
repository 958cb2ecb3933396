package view

import (
	"container/list"
	"sync"

	"github.com/ritzau/meetmap/pkg/layout"
)

// resultCache is a small LRU over finished layouts, keyed by the
// (document, collapse set) fingerprint. Re-expanding a branch the
// user just collapsed hits the cache instead of recomputing.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List               // Front = most recently used
	items    map[string]*list.Element // Fingerprint -> element
}

type cacheEntry struct {
	key    string
	result *layout.Result
}

func newResultCache(capacity int) *resultCache {
	if capacity < 1 {
		capacity = 1
	}
	return &resultCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// get returns a cached layout and marks it recently used
func (c *resultCache) get(key string) (*layout.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*cacheEntry).result, true
}

// put stores a layout, evicting the least recently used entry when
// the cache is full
func (c *resultCache) put(key string, result *layout.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		element.Value.(*cacheEntry).result = result
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&cacheEntry{key: key, result: result})
	c.items[key] = element

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// reset drops every entry, for document changes
func (c *resultCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// len returns the number of cached layouts
func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
