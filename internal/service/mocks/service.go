package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/service"
)

// Shortener is a mock implementation of service.Shortener
type Shortener struct {
	mock.Mock
}

// Shorten normalizes and shortens a URL
func (m *Shortener) Shorten(ctx context.Context, raw string) (*service.ShortenResult, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShortenResult), args.Error(1)
}

// Resolve returns the original URL for a short code
func (m *Shortener) Resolve(ctx context.Context, shortCode string) (string, error) {
	args := m.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

// Lookup returns the stored mapping for a short code
func (m *Shortener) Lookup(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLMapping), args.Error(1)
}

// Ping checks the backing store
func (m *Shortener) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the service
func (m *Shortener) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ service.Shortener = (*Shortener)(nil)
