package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/hashlink/internal/cache"
)

// Cache is a mock implementation of cache.Cache
type Cache struct {
	mock.Mock
}

// Get retrieves the URL for a short code
func (m *Cache) Get(ctx context.Context, shortCode string) (string, bool, error) {
	args := m.Called(ctx, shortCode)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Set stores the URL for a short code
func (m *Cache) Set(ctx context.Context, shortCode, url string) error {
	args := m.Called(ctx, shortCode, url)
	return args.Error(0)
}

// Close closes the cache
func (m *Cache) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ cache.Cache = (*Cache)(nil)
