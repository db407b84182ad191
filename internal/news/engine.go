// Package news selects and projects personalized news for a user.
package news

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/timewindow"
)

const (
	DefaultDailyLimit   = 10
	MaxDailyLimit       = 20
	DefaultMonthlyLimit = 100
	MaxMonthlyLimit     = 200
)

// TableMissingHint is returned alongside an empty listing when the backend
// schema has not been provisioned.
const TableMissingHint = "news tables are not provisioned yet; create the news and news_analysis tables or enable USE_MOCK_NEWS"

// Request describes one personalized listing.
type Request struct {
	Window      timewindow.Window
	Granularity timewindow.Granularity
	Profile     models.UserProfile
	Category    string
	Limit       int
}

// Result is a personalized listing. Hint is set when the listing was degraded.
type Result struct {
	News []models.NewsView `json:"news"`
	Hint string            `json:"hint,omitempty"`
}

// Degraded reports whether the result stands in for an unavailable backend.
func (r Result) Degraded() bool {
	return r.Hint != ""
}

// Engine runs listings over a NewsRepository. The daily and monthly views
// share it and differ only in window and limit.
type Engine struct {
	repo storage.NewsRepository
	now  func() time.Time
}

func NewEngine(repo storage.NewsRepository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// ClampLimit applies the default and bounds for the granularity. Zero selects
// the default; negative values clamp to one.
func ClampLimit(g timewindow.Granularity, n int) int {
	def, hi := DefaultDailyLimit, MaxDailyLimit
	if g == timewindow.Monthly {
		def, hi = DefaultMonthlyLimit, MaxMonthlyLimit
	}
	switch {
	case n == 0:
		return def
	case n < 0:
		return 1
	case n > hi:
		return hi
	default:
		return n
	}
}

// Select returns the user's articles in the window, newest first.
func (e *Engine) Select(ctx context.Context, req Request) (Result, error) {
	empty := Result{News: []models.NewsView{}}

	if len(req.Profile.InterestTags) == 0 {
		return empty, nil
	}
	categories := ResolveCategories(req.Profile.InterestTags, req.Category)
	if len(categories) == 0 {
		return empty, nil
	}

	limit := ClampLimit(req.Granularity, req.Limit)
	level := req.Profile.Level
	if !level.Valid() {
		level = models.DefaultLevel
	}

	articles, err := e.repo.ListNews(ctx, storage.NewsQuery{
		Start:      req.Window.Start,
		End:        req.Window.End,
		Categories: categories,
		Level:      level,
		Limit:      limit,
	})
	if err != nil {
		if storage.IsTableMissing(err) {
			logger.FromContext(ctx).Warn().
				Err(err).
				Str("window", req.Window.Label).
				Msg("news backend not provisioned, serving empty listing")
			empty.Hint = TableMissingHint
			return empty, nil
		}
		return Result{}, fmt.Errorf("list news for %s: %w", req.Window.Label, err)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})

	now := e.now()
	views := make([]models.NewsView, 0, len(articles))
	for _, a := range articles {
		if !a.HasAnalysis() {
			continue
		}
		views = append(views, project(a, req.Profile, level, now))
		if len(views) == limit {
			break
		}
	}

	return Result{News: views}, nil
}

// Detail projects a single article for the user.
func (e *Engine) Detail(ctx context.Context, id string, p models.UserProfile) (*models.NewsView, error) {
	level := p.Level
	if !level.Valid() {
		level = models.DefaultLevel
	}

	article, err := e.repo.GetNews(ctx, id, level)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || storage.IsTableMissing(err) {
			return nil, fmt.Errorf("news %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("get news %s: %w", id, err)
	}

	view := project(*article, p, level, e.now())
	return &view, nil
}

func project(a models.NewsArticle, p models.UserProfile, level models.Level, now time.Time) models.NewsView {
	analysis := a.AnalysisAt(level)
	return models.NewsView{
		ID:          a.ID,
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		Category:    a.Category,
		Source:      a.SourceName,
		Analysis: models.AnalysisView{
			Level:          level,
			Title:          analysis.Title,
			Content:        analysis.Content,
			WorstScenarios: byContext(analysis.WorstScenarioByContext, p.ContextTags),
			ActionTips:     byContext(analysis.ActionTipByContext, p.ContextTags),
			ShouldBlur:     ShouldBlur(p.OnboardedAt, now, analysis.ActionBlurred),
		},
	}
}

// byContext picks the entries for the user's contexts, in the user's order.
func byContext(dict map[string]string, contexts []string) []string {
	out := make([]string, 0, len(contexts))
	for _, c := range contexts {
		if v := dict[c]; v != "" {
			out = append(out, v)
		}
	}
	return out
}
