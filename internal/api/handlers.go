package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/newsinflight/internal/authprovider"
	"github.com/bilgisen/newsinflight/internal/catalog"
	"github.com/bilgisen/newsinflight/internal/config"
	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/middleware"
	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/news"
	"github.com/bilgisen/newsinflight/internal/profile"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/subscription"
	"github.com/bilgisen/newsinflight/internal/timewindow"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Deps are the collaborators the handlers run on.
type Deps struct {
	Engine        *news.Engine
	Subscriptions *subscription.Resolver
	Users         storage.UserStore
	Provider      authprovider.Provider
	Catalog       *catalog.Catalog
	Seeder        *catalog.Seeder
	// NewsSource names the news backend in the health check.
	NewsSource string
}

type Handlers struct {
	config    *config.Config
	deps      Deps
	validator *middleware.Validator
	now       func() time.Time
}

func NewHandlers(cfg *config.Config, deps Deps) *Handlers {
	return &Handlers{
		config:    cfg,
		deps:      deps,
		validator: middleware.NewValidator(),
		now:       time.Now,
	}
}

// backendContext bounds one backend call by the configured timeout.
func (h *Handlers) backendContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.config.BackendTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.config.BackendTimeout)
}

func (h *Handlers) currentProfile(c *fiber.Ctx) (models.UserProfile, error) {
	p, err := profile.Resolve(middleware.SessionFrom(c))
	if err != nil {
		return models.UserProfile{}, fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	return p, nil
}

func internalError(c *fiber.Ctx, msg string, err error) error {
	logger.FromContext(c.UserContext()).Error().Err(err).Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   msg,
		"details": err.Error(),
	})
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"version":     Version,
		"time":        h.now().UTC().Format(time.RFC3339),
		"news_source": h.deps.NewsSource,
	})
}

// GetCatalog handles GET /api/catalog
func (h *Handlers) GetCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"interests": h.deps.Catalog.Interests,
		"contexts":  h.deps.Catalog.Contexts,
	})
}

type listQuery struct {
	Date     string `query:"date"`
	Month    string `query:"month"`
	Category string `query:"category"`
	Limit    string `query:"limit"`
}

// limit reads the limit leniently; anything unparsable selects the default.
func (q *listQuery) limit() int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Limit))
	if err != nil {
		return 0
	}
	return n
}

// GetNews handles GET /api/news
func (h *Handlers) GetNews(c *fiber.Ctx) error {
	p, err := h.currentProfile(c)
	if err != nil {
		return err
	}
	q := middleware.QueryParams[listQuery](c)
	now := h.now()
	window := timewindow.Day(q.Date, now)

	// fiber.Ctx is not safe for concurrent use; only the context crosses over.
	parent := c.UserContext()

	var (
		wg      sync.WaitGroup
		sub     subscription.Result
		result  news.Result
		listErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := h.backendContext(parent)
		defer cancel()
		sub = h.deps.Subscriptions.Resolve(ctx, p.UserID)
	}()
	go func() {
		defer wg.Done()
		ctx, cancel := h.backendContext(parent)
		defer cancel()
		result, listErr = h.deps.Engine.Select(ctx, news.Request{
			Window:      window,
			Granularity: timewindow.Daily,
			Profile:     p,
			Category:    q.Category,
			Limit:       q.limit(),
		})
	}()
	wg.Wait()

	if listErr != nil {
		return internalError(c, "failed to load news", listErr)
	}
	if result.Degraded() {
		middleware.RecordDegradedListing("daily")
	}

	trial := news.IsTrialPeriod(p.OnboardedAt, now)
	days := sub.DaysRemaining(now)
	if trialDays := news.TrialDaysRemaining(p.OnboardedAt, now); trialDays > days {
		days = trialDays
	}

	body := fiber.Map{
		"date": window.Label,
		"news": result.News,
		"subscription": fiber.Map{
			"active":         sub.Status == subscription.FirstClass || trial,
			"status":         sub.Status,
			"trial":          trial,
			"days_remaining": days,
		},
	}
	if result.Hint != "" {
		body["hint"] = result.Hint
	}
	return c.JSON(body)
}

// GetMonthlyNews handles GET /api/news/monthly
func (h *Handlers) GetMonthlyNews(c *fiber.Ctx) error {
	p, err := h.currentProfile(c)
	if err != nil {
		return err
	}
	q := middleware.QueryParams[listQuery](c)
	window := timewindow.Month(q.Month, h.now())

	ctx, cancel := h.backendContext(c.UserContext())
	defer cancel()

	result, err := h.deps.Engine.Select(ctx, news.Request{
		Window:      window,
		Granularity: timewindow.Monthly,
		Profile:     p,
		Category:    q.Category,
		Limit:       q.limit(),
	})
	if err != nil {
		return internalError(c, "failed to load monthly news", err)
	}
	if result.Degraded() {
		middleware.RecordDegradedListing("monthly")
	}

	body := fiber.Map{
		"month": window.Label,
		"news":  result.News,
	}
	if result.Hint != "" {
		body["hint"] = result.Hint
	}
	return c.JSON(body)
}

type detailQuery struct {
	Level int `query:"level" validate:"omitempty,min=1,max=3"`
}

// GetNewsByID handles GET /api/news/:id. An explicit level query overrides
// the profile's level for this request.
func (h *Handlers) GetNewsByID(c *fiber.Ctx) error {
	p, err := h.currentProfile(c)
	if err != nil {
		return err
	}
	if q := middleware.QueryParams[detailQuery](c); q.Level != 0 {
		p.Level = models.Level(q.Level)
	}

	ctx, cancel := h.backendContext(c.UserContext())
	defer cancel()

	view, err := h.deps.Engine.Detail(ctx, c.Params("id"), p)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "news not found",
		})
	}
	if err != nil {
		return internalError(c, "failed to load news item", err)
	}
	return c.JSON(view)
}

// GetSubscriptionStatus handles GET /api/subscription/status
func (h *Handlers) GetSubscriptionStatus(c *fiber.Ctx) error {
	p, err := h.currentProfile(c)
	if err != nil {
		return err
	}

	ctx, cancel := h.backendContext(c.UserContext())
	defer cancel()

	sub := h.deps.Subscriptions.Resolve(ctx, p.UserID)
	return c.JSON(fiber.Map{
		"status":         sub.Status,
		"source":         sub.Source,
		"ends_at":        sub.EndsAt,
		"days_remaining": sub.DaysRemaining(h.now()),
	})
}
