package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a resolved short code stays cached
const DefaultTTL = 24 * time.Hour

// Cache is a read-through cache from short code to original URL.
// Mappings are immutable once created, so entries never need invalidation.
type Cache interface {
	// Get returns the cached URL for a short code. A miss is ("", false, nil).
	Get(ctx context.Context, shortCode string) (string, bool, error)

	// Set stores the URL for a short code
	Set(ctx context.Context, shortCode, url string) error

	// Close releases any connection held by the cache
	Close() error
}

// Nop is a Cache that stores nothing
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Nop) Set(context.Context, string, string) error { return nil }

func (Nop) Close() error { return nil }

var _ Cache = Nop{}
