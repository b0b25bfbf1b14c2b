// Package cache memoizes panel results for the filter currently applied
// to a dashboard session.
package cache

import "sync"

// Cache holds results for exactly one filter key at a time. Touching it
// with a different key discards everything stored under the previous
// one, so a filter change can never serve stale panels.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	key     string
	entries map[string]interface{}
	stats   Stats
}

type Stats struct {
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	Invalidations int `json:"invalidations"`
}

func New() *Cache {
	return &Cache{entries: make(map[string]interface{})}
}

// switchTo must be called with mu held.
func (c *Cache) switchTo(key string) {
	if key == c.key {
		return
	}
	if len(c.entries) > 0 {
		c.stats.Invalidations++
	}
	c.key = key
	c.entries = make(map[string]interface{})
}

func (c *Cache) Get(key, name string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchTo(key)
	v, ok := c.entries[name]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

func (c *Cache) Put(key, name string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchTo(key)
	c.entries[name] = v
}

// Load returns the cached value for name under key, computing and storing
// it on a miss. Errors are returned but never stored. compute runs
// without the lock held; if the key changes meanwhile, the result is
// returned to the caller and dropped from the cache.
func (c *Cache) Load(key, name string, compute func() (interface{}, error)) (interface{}, error) {
	if v, ok := c.Get(key, name); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == key {
		c.entries[name] = v
	}
	return v, nil
}

// Invalidate drops all entries.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > 0 {
		c.stats.Invalidations++
	}
	c.entries = make(map[string]interface{})
}

func (c *Cache) Key() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.key
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
