package shortener

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
)

// Result describes the outcome of an allocation
type Result struct {
	Mapping  *domain.URLMapping
	Created  bool // false when an existing mapping was returned
	Attempts int  // insert attempts made; 0 when the existence check hit
}

// Allocator assigns short codes to normalized URLs. It holds no locks; the
// store's insert-if-absent primitive is the only synchronization point, so
// one Allocator may be shared by any number of goroutines.
type Allocator struct {
	store      repository.Store
	hashLength int
	observer   Observer
	logger     *zap.Logger
}

// Option configures an Allocator
type Option func(*Allocator)

// WithObserver attaches an allocation event observer
func WithObserver(o Observer) Option {
	return func(a *Allocator) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithLogger sets the logger used for collision diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAllocator creates an allocator over store
func NewAllocator(store repository.Store, cfg Config, opts ...Option) (*Allocator, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.HashLength <= 0 {
		return nil, fmt.Errorf("hash length must be positive, got: %d", cfg.HashLength)
	}

	a := &Allocator{
		store:      store,
		hashLength: cfg.HashLength,
		observer:   nopObserver{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// HashLength returns the configured code length
func (a *Allocator) HashLength() int {
	return a.hashLength
}

// Allocate returns the mapping for normalizedURL, creating it when none
// exists. Concurrent calls for the same URL converge on one mapping. Store
// errors are returned unchanged.
func (a *Allocator) Allocate(ctx context.Context, normalizedURL string) (*Result, error) {
	existing, err := a.store.FindByURL(ctx, normalizedURL)
	switch {
	case err == nil:
		a.observer.ObserveAllocation(0, false)
		return &Result{Mapping: existing}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		code := Candidate(normalizedURL, attempt, a.hashLength)

		created, err := a.store.InsertIfAbsent(ctx, code, normalizedURL)
		if err != nil {
			return nil, err
		}
		if created != nil {
			a.observer.ObserveAllocation(attempt+1, true)
			return &Result{Mapping: created, Created: true, Attempts: attempt + 1}, nil
		}

		// The code is taken. Read it back by code: if it holds our URL a
		// concurrent caller won the race for this very candidate.
		holder, err := a.store.FindByCode(ctx, code)
		switch {
		case err == nil && holder.OriginalURL == normalizedURL:
			a.observer.ObserveAllocation(attempt+1, false)
			return &Result{Mapping: holder, Attempts: attempt + 1}, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}

		a.observer.ObserveCollision()
		a.logger.Debug("short code collision",
			zap.String("code", code),
			zap.Int("attempt", attempt),
			zap.String("url", normalizedURL))
	}

	a.observer.ObserveExhausted()
	a.logger.Warn("short code allocation exhausted",
		zap.String("url", normalizedURL),
		zap.Int("attempts", MaxAttempts))
	return nil, domain.ErrAllocationExhausted
}
