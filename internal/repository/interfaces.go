package repository

import (
	"context"

	"github.com/joshdurbin/hashlink/internal/domain"
)

// Store defines the persistence operations for URL mappings. Every failure
// other than a missing row is returned as *domain.StoreError.
type Store interface {
	// FindByCode returns the mapping stored under code, or domain.ErrNotFound
	FindByCode(ctx context.Context, code string) (*domain.URLMapping, error)

	// FindByURL returns the first mapping whose original URL equals url, or domain.ErrNotFound
	FindByURL(ctx context.Context, url string) (*domain.URLMapping, error)

	// InsertIfAbsent atomically inserts code -> url with a zero click count.
	// It returns the created mapping, or nil with a nil error when code is
	// already taken.
	InsertIfAbsent(ctx context.Context, code, url string) (*domain.URLMapping, error)

	// IncrementClickCount adds one to the click count of code
	IncrementClickCount(ctx context.Context, code string) error

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
