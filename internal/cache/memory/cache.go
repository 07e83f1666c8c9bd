package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joshdurbin/hashlink/internal/cache"
)

type entry struct {
	url       string
	expiresAt time.Time
}

// Cache implements cache.Cache using an in-process map with per-entry TTL
type Cache struct {
	data  map[string]entry
	mutex sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// New creates a new in-memory cache. A ttl of zero or less keeps entries forever.
func New(ttl time.Duration) *Cache {
	return &Cache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Get retrieves the URL for a short code, treating expired entries as misses
func (c *Cache) Get(ctx context.Context, shortCode string) (string, bool, error) {
	c.mutex.RLock()
	e, exists := c.data[shortCode]
	c.mutex.RUnlock()

	if !exists {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.mutex.Lock()
		if cur, ok := c.data[shortCode]; ok && cur == e {
			delete(c.data, shortCode)
		}
		c.mutex.Unlock()
		return "", false, nil
	}
	return e.url, true, nil
}

// Set stores the URL for a short code
func (c *Cache) Set(ctx context.Context, shortCode, url string) error {
	e := entry{url: url}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	c.mutex.Lock()
	c.data[shortCode] = e
	c.mutex.Unlock()
	return nil
}

// Len returns the number of entries held, including expired ones not yet evicted
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Close drops all entries
func (c *Cache) Close() error {
	c.mutex.Lock()
	c.data = make(map[string]entry)
	c.mutex.Unlock()
	return nil
}

var _ cache.Cache = (*Cache)(nil)
