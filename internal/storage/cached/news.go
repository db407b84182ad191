// Package cached decorates a NewsRepository with a read-through cache.
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/newsinflight/internal/cache"
	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/utils"
)

// NewsRepository caches ListNews and GetNews results for a fixed TTL. Articles
// are never written through this layer, so expiry is the only invalidation.
type NewsRepository struct {
	next  storage.NewsRepository
	store cache.Store
	ttl   time.Duration
	log   *zerolog.Logger
}

var _ storage.NewsRepository = (*NewsRepository)(nil)

// New wraps next. A non-positive ttl disables caching.
func New(next storage.NewsRepository, store cache.Store, ttl time.Duration) *NewsRepository {
	return &NewsRepository{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   logger.Get(),
	}
}

func (r *NewsRepository) ListNews(ctx context.Context, q storage.NewsQuery) ([]models.NewsArticle, error) {
	if r.ttl <= 0 {
		return r.next.ListNews(ctx, q)
	}

	key := listKey(q)
	var cached []models.NewsArticle
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	articles, err := r.next.ListNews(ctx, q)
	if err != nil {
		return nil, err
	}
	r.save(ctx, key, articles)
	return articles, nil
}

func (r *NewsRepository) GetNews(ctx context.Context, id string, level models.Level) (*models.NewsArticle, error) {
	if r.ttl <= 0 {
		return r.next.GetNews(ctx, id, level)
	}

	key := utils.CacheKey("news:item", id, level.ColumnPrefix())
	var cached models.NewsArticle
	if r.load(ctx, key, &cached) {
		return &cached, nil
	}

	article, err := r.next.GetNews(ctx, id, level)
	if err != nil {
		return nil, err
	}
	r.save(ctx, key, article)
	return article, nil
}

func listKey(q storage.NewsQuery) string {
	return utils.CacheKey("news:list",
		q.Start.UTC().Format(time.RFC3339),
		q.End.UTC().Format(time.RFC3339),
		strings.Join(q.Categories, ","),
		q.Level.ColumnPrefix(),
		strconv.Itoa(q.Limit),
	)
}

// load reports a hit. Cache failures are logged and treated as misses.
func (r *NewsRepository) load(ctx context.Context, key string, dst interface{}) bool {
	b, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			r.log.Warn().Err(err).Str("key", key).Msg("news cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	return true
}

func (r *NewsRepository) save(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("news cache encode failed")
		return
	}
	if err := r.store.Set(ctx, key, b, r.ttl); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("news cache write failed")
	}
}
