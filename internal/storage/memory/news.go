// Package memory provides in-process implementations of the storage
// interfaces, used for fixture mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
)

// NewsRepository serves news from a fixed fixture set.
type NewsRepository struct {
	mu       sync.RWMutex
	articles []models.NewsArticle
}

var _ storage.NewsRepository = (*NewsRepository)(nil)

// NewNewsRepository creates a repository over a copy of articles.
func NewNewsRepository(articles []models.NewsArticle) *NewsRepository {
	r := &NewsRepository{}
	r.Replace(articles)
	return r
}

// Replace swaps the fixture set.
func (r *NewsRepository) Replace(articles []models.NewsArticle) {
	cp := make([]models.NewsArticle, len(articles))
	copy(cp, articles)

	r.mu.Lock()
	r.articles = cp
	r.mu.Unlock()
}

// Len returns the number of fixtures loaded.
func (r *NewsRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.articles)
}

// ListNews filters fixtures by window and category, newest first. Articles
// without any analysis are left out, as the live store's join does.
func (r *NewsRepository) ListNews(ctx context.Context, q storage.NewsQuery) ([]models.NewsArticle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	allowed := make(map[string]struct{}, len(q.Categories))
	for _, c := range q.Categories {
		allowed[c] = struct{}{}
	}

	r.mu.RLock()
	var out []models.NewsArticle
	for _, a := range r.articles {
		if a.PublishedAt.Before(q.Start) || !a.PublishedAt.Before(q.End) {
			continue
		}
		if _, ok := allowed[a.Category]; !ok || !a.HasAnalysis() {
			continue
		}
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// GetNews returns the fixture with the given id.
func (r *NewsRepository) GetNews(ctx context.Context, id string, _ models.Level) (*models.NewsArticle, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.articles {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, storage.ErrNotFound
}
