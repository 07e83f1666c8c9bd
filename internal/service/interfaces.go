package service

import (
	"context"

	"github.com/joshdurbin/hashlink/internal/domain"
)

// ShortenResult is the outcome of a Shorten call
type ShortenResult struct {
	Mapping *domain.URLMapping
	// Created is false when the URL was already shortened
	Created bool
}

// Shortener defines the URL shortening operations exposed to transports
type Shortener interface {
	// Shorten normalizes raw and returns its mapping, allocating a code on first use
	Shorten(ctx context.Context, raw string) (*ShortenResult, error)

	// Resolve returns the original URL for a short code and increments its click count
	Resolve(ctx context.Context, shortCode string) (string, error)

	// Lookup returns the stored mapping without counting a click
	Lookup(ctx context.Context, shortCode string) (*domain.URLMapping, error)

	// Ping checks the backing store
	Ping(ctx context.Context) error

	// Close closes the service and its dependencies
	Close() error
}
