package cache

import (
	"sync"
	"time"
)

type item struct {
	value   any
	expires time.Time
}

// Cache holds values for a fixed TTL. Expired entries are dropped lazily on
// the next read of their key.
type Cache struct {
	ttl   time.Duration
	mu    sync.Mutex
	items map[string]item
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:   ttl,
		items: make(map[string]item),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]

	if !ok {
		return nil, false
	}

	if time.Now().After(it.expires) {
		delete(c.items, key)
		return nil, false
	}

	return it.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{value: value, expires: time.Now().Add(c.ttl)}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]item)
}
