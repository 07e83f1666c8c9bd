package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/joshdurbin/hashlink/internal/cache"
	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/normalize"
	"github.com/joshdurbin/hashlink/internal/repository"
	"github.com/joshdurbin/hashlink/internal/shortener"
)

// urlShortener implements Shortener
type urlShortener struct {
	store     repository.Store
	cache     cache.Cache
	allocator *shortener.Allocator
	logger    *zap.Logger
}

// NewURLShortener creates a new URL shortener service. A nil cache disables
// caching and a nil logger discards log output.
func NewURLShortener(store repository.Store, c cache.Cache, allocator *shortener.Allocator, logger *zap.Logger) (Shortener, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if allocator == nil {
		return nil, errors.New("allocator is required")
	}
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &urlShortener{
		store:     store,
		cache:     c,
		allocator: allocator,
		logger:    logger,
	}, nil
}

// Shorten normalizes raw and allocates or returns its short code
func (s *urlShortener) Shorten(ctx context.Context, raw string) (*ShortenResult, error) {
	normalized, err := normalize.Normalize(raw)
	if err != nil {
		return nil, err
	}

	result, err := s.allocator.Allocate(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if result.Created {
		s.logger.Info("short code created",
			zap.String("short_code", result.Mapping.ShortCode),
			zap.String("url", normalized),
			zap.Int("attempts", result.Attempts))
	}

	s.warmCache(ctx, result.Mapping.ShortCode, result.Mapping.OriginalURL)

	return &ShortenResult{Mapping: result.Mapping, Created: result.Created}, nil
}

// Resolve returns the original URL for a short code, reading through the cache
func (s *urlShortener) Resolve(ctx context.Context, shortCode string) (string, error) {
	url, found, err := s.cache.Get(ctx, shortCode)
	if err != nil {
		s.logger.Warn("cache lookup failed", zap.String("short_code", shortCode), zap.Error(err))
		found = false
	}

	if !found {
		mapping, err := s.store.FindByCode(ctx, shortCode)
		if err != nil {
			return "", err
		}
		url = mapping.OriginalURL
		s.warmCache(ctx, shortCode, url)
	}

	if err := s.store.IncrementClickCount(ctx, shortCode); err != nil {
		return "", err
	}

	return url, nil
}

// Lookup returns the stored mapping for a short code
func (s *urlShortener) Lookup(ctx context.Context, shortCode string) (*domain.URLMapping, error) {
	return s.store.FindByCode(ctx, shortCode)
}

// Ping checks the backing store
func (s *urlShortener) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the service and its dependencies
func (s *urlShortener) Close() error {
	if err := s.cache.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

// warmCache stores a mapping in the cache. Cache failures never fail the request.
func (s *urlShortener) warmCache(ctx context.Context, shortCode, url string) {
	if err := s.cache.Set(ctx, shortCode, url); err != nil {
		s.logger.Warn("failed to cache entry", zap.String("short_code", shortCode), zap.Error(err))
	}
}

var _ Shortener = (*urlShortener)(nil)
