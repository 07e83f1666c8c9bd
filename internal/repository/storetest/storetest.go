// Package storetest holds the behavioral contract every repository.Store
// implementation must satisfy. Backend packages call Run from their tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
)

// Factory returns a fresh, empty store. Run closes it when each subtest ends.
type Factory func(t *testing.T) repository.Store

// Run executes the contract suite against stores built by newStore
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s repository.Store)
	}{
		{"find by code missing", testFindByCodeMissing},
		{"find by url missing", testFindByURLMissing},
		{"insert creates mapping", testInsertCreates},
		{"insert conflict returns nil", testInsertConflict},
		{"same url under two codes", testSameURLTwoCodes},
		{"increment click count", testIncrementClickCount},
		{"increment unknown code", testIncrementUnknown},
		{"concurrent insert same code", testConcurrentInsert},
		{"ping", testPing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			defer func() {
				assert.NoError(t, s.Close())
			}()
			tc.fn(t, s)
		})
	}
}

func testFindByCodeMissing(t *testing.T, s repository.Store) {
	m, err := s.FindByCode(context.Background(), "nope0000")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testFindByURLMissing(t *testing.T, s repository.Store) {
	m, err := s.FindByURL(context.Background(), "https://missing.example.com")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testInsertCreates(t *testing.T, s repository.Store) {
	ctx := context.Background()

	created, err := s.InsertIfAbsent(ctx, "abcd1234", "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "abcd1234", created.ShortCode)
	assert.Equal(t, "https://example.com", created.OriginalURL)
	assert.Equal(t, int64(0), created.ClickCount)
	assert.False(t, created.CreatedAt.IsZero())

	byCode, err := s.FindByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, created.OriginalURL, byCode.OriginalURL)
	assert.Equal(t, int64(0), byCode.ClickCount)

	byURL, err := s.FindByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", byURL.ShortCode)
}

func testInsertConflict(t *testing.T, s repository.Store) {
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, "abcd1234", "https://first.example.com")
	require.NoError(t, err)

	again, err := s.InsertIfAbsent(ctx, "abcd1234", "https://second.example.com")
	require.NoError(t, err)
	assert.Nil(t, again)

	stored, err := s.FindByCode(ctx, "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "https://first.example.com", stored.OriginalURL)

	_, err = s.FindByURL(ctx, "https://second.example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testSameURLTwoCodes(t *testing.T, s repository.Store) {
	ctx := context.Background()

	// The store only enforces code uniqueness; URL uniqueness belongs to the allocator.
	first, err := s.InsertIfAbsent(ctx, "code0001", "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := s.InsertIfAbsent(ctx, "code0002", "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, second)

	found, err := s.FindByURL(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, []string{"code0001", "code0002"}, found.ShortCode)
}

func testIncrementClickCount(t *testing.T, s repository.Store) {
	ctx := context.Background()

	_, err := s.InsertIfAbsent(ctx, "clicks01", "https://example.com")
	require.NoError(t, err)

	var last int64
	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementClickCount(ctx, "clicks01"))

		m, err := s.FindByCode(ctx, "clicks01")
		require.NoError(t, err)
		assert.Greater(t, m.ClickCount, last)
		last = m.ClickCount
	}
	assert.Equal(t, int64(3), last)
}

func testIncrementUnknown(t *testing.T, s repository.Store) {
	assert.NoError(t, s.IncrementClickCount(context.Background(), "unknown1"))

	_, err := s.FindByCode(context.Background(), "unknown1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testConcurrentInsert(t *testing.T, s repository.Store) {
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	results := make([]*domain.URLMapping, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.InsertIfAbsent(ctx, "race0001", fmt.Sprintf("https://w%d.example.com", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		if results[i] != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func testPing(t *testing.T, s repository.Store) {
	assert.NoError(t, s.Ping(context.Background()))
}
