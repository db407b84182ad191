package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/newsinflight/internal/config"
	"github.com/bilgisen/newsinflight/internal/middleware"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, cfg *config.Config, limiter *middleware.RateLimiter) {
	app.Get("/health", handlers.HealthCheck)
	app.Get("/metrics", middleware.MetricsHandler())

	api := app.Group("/api")

	api.Get("/catalog", handlers.GetCatalog)

	session := middleware.NewAuth(middleware.AuthConfig{
		Secret: []byte(cfg.AuthJWTSecret),
		Issuer: cfg.AuthJWTIssuer,
	})
	limit := limiter.Handler()

	// News endpoints
	news := api.Group("/news", session, limit)
	{
		news.Get("", middleware.ValidateQueryParams[listQuery](), handlers.GetNews)
		news.Get("/monthly", middleware.ValidateQueryParams[listQuery](), handlers.GetMonthlyNews)
		news.Get("/:id", middleware.ValidateQueryParams[detailQuery](), handlers.GetNewsByID)
	}

	api.Post("/onboarding/complete", session, limit, handlers.CompleteOnboarding)
	api.Get("/subscription/status", session, limit, handlers.GetSubscriptionStatus)
	api.Post("/sync-user", session, limit, handlers.SyncUser)

	// Admin endpoints
	admin := api.Group("/admin", middleware.AdminOnly(cfg.AdminAPIKey))
	{
		admin.Post("/catalog/seed", handlers.SeedCatalog)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
