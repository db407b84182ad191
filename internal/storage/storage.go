// Package storage defines the persistence capabilities the service depends on.
// Implementations live in the memory, postgres and cached subpackages.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bilgisen/newsinflight/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTableMissing marks a backend whose schema has not been provisioned yet.
	ErrTableMissing = errors.New("backend table not provisioned")
)

// NewsQuery selects articles for one personalized listing.
type NewsQuery struct {
	Start      time.Time
	End        time.Time
	Categories []string
	Level      models.Level
	Limit      int
}

// NewsRepository reads news articles and their analyses.
type NewsRepository interface {
	// ListNews returns articles published in [Start, End) whose category is one
	// of Categories, newest first, at most Limit of them.
	ListNews(ctx context.Context, q NewsQuery) ([]models.NewsArticle, error)
	// GetNews returns one article with the analysis for level, or ErrNotFound.
	GetNews(ctx context.Context, id string, level models.Level) (*models.NewsArticle, error)
}

// SubscriptionStore reads subscription rows.
type SubscriptionStore interface {
	// LatestSubscription returns the most recently started row for the user,
	// or nil when the user never subscribed.
	LatestSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// UserStore persists the synced copy of auth provider users.
type UserStore interface {
	UpsertUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	// CompleteOnboarding stores preferences; onboarded_at is only set once.
	CompleteOnboarding(ctx context.Context, userID string, o models.Onboarding) (models.User, error)
}

// CatalogTag is one row of the interest or context tag catalog.
type CatalogTag struct {
	ID    string
	Label string
}

// CatalogStore writes the default tag catalog.
type CatalogStore interface {
	// SeedCatalog inserts missing rows and returns how many were new.
	SeedCatalog(ctx context.Context, interests, contexts []CatalogTag) (int, error)
}

var tableMissingMarkers = []string{
	"does not exist",
	"could not find the table",
	"schema cache",
	"no such table",
}

// IsTableMissing reports whether err signals an unprovisioned table, either
// through ErrTableMissing or by the backend's error text.
func IsTableMissing(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTableMissing) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range tableMissingMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
