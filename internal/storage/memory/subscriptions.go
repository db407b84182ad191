package memory

import (
	"context"
	"sync"

	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
)

// SubscriptionStore keeps subscription rows in memory.
type SubscriptionStore struct {
	mu   sync.RWMutex
	rows map[string][]models.Subscription
}

var _ storage.SubscriptionStore = (*SubscriptionStore)(nil)

// NewSubscriptionStore creates an empty store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{rows: make(map[string][]models.Subscription)}
}

// Add stores a subscription row.
func (s *SubscriptionStore) Add(sub models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sub.UserID] = append(s.rows[sub.UserID], sub)
}

// LatestSubscription returns the most recently started row. On equal start
// times the row added last wins.
func (s *SubscriptionStore) LatestSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Subscription
	for i := range s.rows[userID] {
		row := s.rows[userID][i]
		if latest == nil || !row.StartedAt.Before(latest.StartedAt) {
			latest = &row
		}
	}
	return latest, nil
}
