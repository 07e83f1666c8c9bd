package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
)

// Store is a mock implementation of repository.Store
type Store struct {
	mock.Mock
}

// FindByCode returns the mapping stored under code
func (m *Store) FindByCode(ctx context.Context, code string) (*domain.URLMapping, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLMapping), args.Error(1)
}

// FindByURL returns the first mapping for url
func (m *Store) FindByURL(ctx context.Context, url string) (*domain.URLMapping, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLMapping), args.Error(1)
}

// InsertIfAbsent inserts code -> url unless code exists
func (m *Store) InsertIfAbsent(ctx context.Context, code, url string) (*domain.URLMapping, error) {
	args := m.Called(ctx, code, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLMapping), args.Error(1)
}

// IncrementClickCount bumps the click count of code
func (m *Store) IncrementClickCount(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// Ping checks connectivity
func (m *Store) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the store
func (m *Store) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repository.Store = (*Store)(nil)
