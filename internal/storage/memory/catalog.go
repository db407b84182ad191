package memory

import (
	"context"
	"sync"

	"github.com/bilgisen/newsinflight/internal/storage"
)

// CatalogStore keeps the tag catalog in memory.
type CatalogStore struct {
	mu        sync.Mutex
	interests map[string]string
	contexts  map[string]string
}

var _ storage.CatalogStore = (*CatalogStore)(nil)

// NewCatalogStore creates an empty catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		interests: make(map[string]string),
		contexts:  make(map[string]string),
	}
}

// SeedCatalog inserts tags that are not present yet.
func (s *CatalogStore) SeedCatalog(ctx context.Context, interests, contexts []storage.CatalogTag) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := insertMissing(s.interests, interests)
	inserted += insertMissing(s.contexts, contexts)
	return inserted, nil
}

// Size returns the number of interest and context rows.
func (s *CatalogStore) Size() (interests, contexts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.interests), len(s.contexts)
}

func insertMissing(dst map[string]string, tags []storage.CatalogTag) int {
	n := 0
	for _, t := range tags {
		if _, ok := dst[t.ID]; ok {
			continue
		}
		dst[t.ID] = t.Label
		n++
	}
	return n
}
