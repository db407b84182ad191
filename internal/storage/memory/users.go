package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
)

// UserStore keeps synced users in memory.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

var _ storage.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

// UpsertUser inserts the user or refreshes its identity fields. Preferences
// and onboarding state of an existing row are preserved.
func (s *UserStore) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	existing, ok := s.users[u.ID]
	if !ok {
		if !u.Level.Valid() {
			u.Level = models.DefaultLevel
		}
		if u.InterestTags == nil {
			u.InterestTags = []string{}
		}
		if u.ContextTags == nil {
			u.ContextTags = []string{}
		}
		u.CreatedAt = now
		u.UpdatedAt = now
		s.users[u.ID] = u
		return u, nil
	}

	existing.Email = u.Email
	existing.Name = u.Name
	existing.ImageURL = u.ImageURL
	existing.UpdatedAt = now
	s.users[u.ID] = existing
	return existing, nil
}

// GetUser returns the user or storage.ErrNotFound.
func (s *UserStore) GetUser(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

// CompleteOnboarding stores the preferences; onboarded_at keeps its first value.
func (s *UserStore) CompleteOnboarding(ctx context.Context, userID string, o models.Onboarding) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	u.Level = o.Level
	u.InterestTags = append([]string(nil), o.InterestTags...)
	u.ContextTags = append([]string(nil), o.ContextTags...)
	if u.OnboardedAt == nil {
		at := o.OnboardedAt.UTC()
		u.OnboardedAt = &at
	}
	u.UpdatedAt = s.now().UTC()
	s.users[userID] = u
	return u, nil
}
