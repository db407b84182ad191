package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bilgisen/newsinflight/internal/cache"
	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/storage"
)

const (
	seedLockKey = "lock:catalog-seed"
	seedLockTTL = time.Minute
)

// ErrSeedInProgress is returned when another instance holds the seed lock.
var ErrSeedInProgress = errors.New("catalog seed already in progress")

// Seeder writes the default catalog into the backend.
type Seeder struct {
	catalog *Catalog
	store   storage.CatalogStore
	lock    cache.Store
}

func NewSeeder(c *Catalog, store storage.CatalogStore, lock cache.Store) *Seeder {
	return &Seeder{catalog: c, store: store, lock: lock}
}

// Seed inserts missing catalog rows and returns how many were new. Concurrent
// callers are serialized through a lock key; the loser gets ErrSeedInProgress.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	token := []byte(uuid.NewString())
	acquired, err := s.lock.SetNX(ctx, seedLockKey, token, seedLockTTL)
	if err != nil {
		return 0, fmt.Errorf("acquire seed lock: %w", err)
	}
	if !acquired {
		return 0, ErrSeedInProgress
	}
	defer func() {
		// Release with a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		released, err := s.lock.DelIfValue(releaseCtx, seedLockKey, token)
		if err != nil {
			log.Warn().Err(err).Msg("failed to release catalog seed lock")
			return
		}
		if !released {
			log.Warn().Msg("catalog seed lock expired before release")
		}
	}()

	interests, contexts := s.catalog.rows()
	inserted, err := s.store.SeedCatalog(ctx, interests, contexts)
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}

	log.Info().
		Int("inserted", inserted).
		Int("interests", len(interests)).
		Int("contexts", len(contexts)).
		Msg("catalog seeded")
	return inserted, nil
}
