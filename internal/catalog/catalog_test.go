package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/newsinflight/internal/cache"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/storage/memory"
)

func TestLoadDefaultCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Len(t, c.Interests, 6)
	assert.True(t, c.HasInterest("crypto"))
	assert.True(t, c.HasContext("loan_holder"))
	assert.False(t, c.HasInterest("loan_holder"))

	badI, badC := c.Unknown([]string{"stock", "nft"}, []string{"investor", "astronaut"})
	assert.Equal(t, []string{"nft"}, badI)
	assert.Equal(t, []string{"astronaut"}, badC)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := Parse([]byte("interests:\n  - id: a\n  - id: a\n"))
	assert.ErrorContains(t, err, "duplicate interest tag")

	_, err = Parse([]byte("contexts:\n  - label: nameless\n"))
	assert.ErrorContains(t, err, "has no id")

	_, err = Parse([]byte("interests: [unterminated"))
	assert.Error(t, err)
}

func TestSeederIsIdempotent(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	store := memory.NewCatalogStore()
	lock := cache.NewMockRedisClient("t:")
	s := NewSeeder(c, store, lock)

	n, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(c.Interests)+len(c.Contexts), n)

	n, err = s.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, lock.Len(), "lock released after seeding")
}

func TestSeederRefusesWhileLocked(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	lock := cache.NewMockRedisClient("t:")
	_, err = lock.SetNX(context.Background(), seedLockKey, []byte("other"), time.Minute)
	require.NoError(t, err)

	_, err = NewSeeder(c, memory.NewCatalogStore(), lock).Seed(context.Background())
	assert.ErrorIs(t, err, ErrSeedInProgress)
}

type blockingStore struct {
	entered chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingStore) SeedCatalog(_ context.Context, interests, contexts []storage.CatalogTag) (int, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	close(b.entered)
	<-b.release
	return len(interests) + len(contexts), nil
}

func TestSeederSerializesConcurrentCallers(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSeeder(c, store, cache.NewMockRedisClient("t:"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Seed(context.Background())
		done <- err
	}()

	<-store.entered
	_, err = s.Seed(context.Background())
	assert.ErrorIs(t, err, ErrSeedInProgress)

	close(store.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.calls)
}

type failingStore struct{}

func (failingStore) SeedCatalog(context.Context, []storage.CatalogTag, []storage.CatalogTag) (int, error) {
	return 0, storage.ErrTableMissing
}

func TestSeederWrapsStoreErrors(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	lock := cache.NewMockRedisClient("t:")

	_, err = NewSeeder(c, failingStore{}, lock).Seed(context.Background())
	assert.True(t, errors.Is(err, storage.ErrTableMissing))
	assert.Zero(t, lock.Len())
}

type seedFunc func(ctx context.Context) error

func (f seedFunc) SeedCatalog(ctx context.Context, _, _ []storage.CatalogTag) (int, error) {
	return 0, f(ctx)
}

func TestSeederKeepsLockTakenOverByAnotherInstance(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	lock := cache.NewMockRedisClient("t:")

	// The lock expires mid-seed and a second instance acquires it.
	store := seedFunc(func(ctx context.Context) error {
		require.NoError(t, lock.Del(ctx, seedLockKey))
		ok, err := lock.SetNX(ctx, seedLockKey, []byte("other-instance"), time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	})

	_, err = NewSeeder(c, store, lock).Seed(context.Background())
	require.NoError(t, err)

	held, err := lock.Get(context.Background(), seedLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-instance", string(held))
}
