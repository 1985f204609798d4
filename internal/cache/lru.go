package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is an in-memory cache with TTL, size-based eviction, and a
// group index for exact-match group invalidation.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	groups  map[string]map[string]struct{} // group -> set of keys
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	group     string
	data      T
	expiresAt time.Time
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		groups:  make(map[string]map[string]struct{}),
		lru:     list.New(),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *LRUCache[T]) Set(key, group string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		group:     group,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		old := elem.Value.(*cacheItem[T])
		if old.group != group {
			c.ungroup(old)
		}
		elem.Value = item
		c.lru.MoveToFront(elem)
		c.addToGroup(item)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem
	c.addToGroup(item)

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

// DeleteGroup drops every entry tagged with group.
func (c *LRUCache[T]) DeleteGroup(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, ok := c.groups[group]
	if !ok {
		return
	}
	for key := range keys {
		if elem, exists := c.items[key]; exists {
			c.removeElement(elem)
		}
	}
	delete(c.groups, group)
}

// CleanExpired removes all expired entries and returns how many.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRUCache[T]) addToGroup(item *cacheItem[T]) {
	set, ok := c.groups[item.group]
	if !ok {
		set = make(map[string]struct{})
		c.groups[item.group] = set
	}
	set[item.key] = struct{}{}
}

func (c *LRUCache[T]) ungroup(item *cacheItem[T]) {
	if set, ok := c.groups[item.group]; ok {
		delete(set, item.key)
		if len(set) == 0 {
			delete(c.groups, item.group)
		}
	}
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.ungroup(item)
	c.lru.Remove(elem)
}
