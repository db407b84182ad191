package fixtures

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/storage/memory"
)

// DailyRepository serves the built-in set and re-anchors it when the UTC day
// changes, so a long-running process keeps a populated daily listing.
type DailyRepository struct {
	mu   sync.Mutex
	day  time.Time
	repo *memory.NewsRepository
	now  func() time.Time
}

var _ storage.NewsRepository = (*DailyRepository)(nil)

func NewDailyRepository() *DailyRepository {
	return &DailyRepository{now: time.Now}
}

func (d *DailyRepository) current() *memory.NewsRepository {
	now := d.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.repo == nil || !d.day.Equal(day) {
		d.repo = memory.NewNewsRepository(Default(now))
		d.day = day
	}
	return d.repo
}

func (d *DailyRepository) ListNews(ctx context.Context, q storage.NewsQuery) ([]models.NewsArticle, error) {
	return d.current().ListNews(ctx, q)
}

func (d *DailyRepository) GetNews(ctx context.Context, id string, level models.Level) (*models.NewsArticle, error) {
	return d.current().GetNews(ctx, id, level)
}
