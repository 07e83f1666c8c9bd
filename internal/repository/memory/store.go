package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
)

// Store implements repository.Store in process memory. It is used by tests
// and by the "memory" database driver; contents are lost on exit.
type Store struct {
	mutex  sync.RWMutex
	byCode map[string]*domain.URLMapping
	byURL  map[string]string // original URL -> first code inserted for it
	now    func() time.Time
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		byCode: make(map[string]*domain.URLMapping),
		byURL:  make(map[string]string),
		now:    time.Now,
	}
}

// FindByCode returns the mapping stored under code
func (s *Store) FindByCode(ctx context.Context, code string) (*domain.URLMapping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	m, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyMapping(m), nil
}

// FindByURL returns the first mapping created for url
func (s *Store) FindByURL(ctx context.Context, url string) (*domain.URLMapping, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	code, ok := s.byURL[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyMapping(s.byCode[code]), nil
}

// InsertIfAbsent inserts code -> url under the write lock
func (s *Store) InsertIfAbsent(ctx context.Context, code, url string) (*domain.URLMapping, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.byCode[code]; exists {
		return nil, nil
	}

	m := &domain.URLMapping{
		ShortCode:   code,
		OriginalURL: url,
		CreatedAt:   s.now().UTC(),
	}
	s.byCode[code] = m
	if _, seen := s.byURL[url]; !seen {
		s.byURL[url] = code
	}
	return copyMapping(m), nil
}

// IncrementClickCount adds one to the click count of code; unknown codes are ignored
func (s *Store) IncrementClickCount(ctx context.Context, code string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if m, ok := s.byCode[code]; ok {
		m.ClickCount++
	}
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored mappings
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.byCode)
}

func copyMapping(m *domain.URLMapping) *domain.URLMapping {
	c := *m
	return &c
}

var _ repository.Store = (*Store)(nil)
