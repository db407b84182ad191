package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/bilgisen/newsinflight/internal/api"
	"github.com/bilgisen/newsinflight/internal/authprovider"
	"github.com/bilgisen/newsinflight/internal/cache"
	"github.com/bilgisen/newsinflight/internal/catalog"
	"github.com/bilgisen/newsinflight/internal/config"
	"github.com/bilgisen/newsinflight/internal/fixtures"
	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/middleware"
	"github.com/bilgisen/newsinflight/internal/models"
	"github.com/bilgisen/newsinflight/internal/news"
	"github.com/bilgisen/newsinflight/internal/storage"
	"github.com/bilgisen/newsinflight/internal/storage/cached"
	"github.com/bilgisen/newsinflight/internal/storage/memory"
	"github.com/bilgisen/newsinflight/internal/storage/postgres"
	"github.com/bilgisen/newsinflight/internal/subscription"
)

type stores struct {
	users         storage.UserStore
	subscriptions storage.SubscriptionStore
	catalog       storage.CatalogStore
	pg            *postgres.Store
}

func main() {
	// Load and validate configuration
	cfg := config.Load()

	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.IsDevelopment(),
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	kv := newCache(cfg, log)
	defer func() {
		log.Info().Msg("Closing cache client...")
		if err := kv.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache client")
		}
	}()

	st := newStores(ctx, cfg, log)
	if st.pg != nil {
		defer st.pg.Close()
	}

	repo, source := newNewsRepository(ctx, cfg, st, kv, log)

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tag catalog")
	}

	if cfg.AuthJWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is empty, every session token will be rejected")
	}

	handlers := api.NewHandlers(cfg, api.Deps{
		Engine:        news.NewEngine(repo),
		Subscriptions: subscription.NewResolver(st.subscriptions),
		Users:         st.users,
		Provider:      newProvider(cfg, log),
		Catalog:       cat,
		Seeder:        catalog.NewSeeder(cat, st.catalog, kv),
		NewsSource:    source,
	})

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, 10*time.Minute)

	api.SetupRoutes(app, handlers, cfg, limiter)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("news_source", source).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newCache(cfg *config.Config, log *zerolog.Logger) cache.Store {
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, using in-memory cache")
		return cache.NewMockRedisClient(cfg.RedisPrefix)
	}
	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	return client
}

func newStores(ctx context.Context, cfg *config.Config, log *zerolog.Logger) stores {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, users and subscriptions are kept in memory")
		return stores{
			users:         memory.NewUserStore(),
			subscriptions: memory.NewSubscriptionStore(),
			catalog:       memory.NewCatalogStore(),
		}
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	defer cancel()
	pg, err := postgres.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	return stores{users: pg, subscriptions: pg, catalog: pg, pg: pg}
}

func newNewsRepository(ctx context.Context, cfg *config.Config, st stores, kv cache.Store, log *zerolog.Logger) (storage.NewsRepository, string) {
	if !cfg.UseMockNews {
		log.Info().Dur("cache_ttl", cfg.CacheTTL).Msg("Serving news from the database")
		return cached.New(st.pg, kv, cfg.CacheTTL), "database"
	}

	if cfg.FixtureObjectKey == "" {
		log.Info().Msg("Serving built-in mock news")
		return fixtures.NewDailyRepository(), "mock"
	}

	articles, err := loadFixtures(ctx, cfg)
	if err != nil {
		log.Error().
			Err(err).
			Str("bucket", cfg.R2Bucket).
			Str("key", cfg.FixtureObjectKey).
			Msg("Failed to load fixture document, using built-in fixtures")
		return fixtures.NewDailyRepository(), "mock"
	}
	log.Info().Int("articles", len(articles)).Msg("Serving mock news from object storage")
	return memory.NewNewsRepository(articles), "mock:r2"
}

func loadFixtures(ctx context.Context, cfg *config.Config) ([]models.NewsArticle, error) {
	loadCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
	defer cancel()

	client, err := fixtures.NewS3Client(loadCtx, cfg)
	if err != nil {
		return nil, err
	}
	return fixtures.LoadFromS3(loadCtx, client, cfg.R2Bucket, cfg.FixtureObjectKey)
}

func newProvider(cfg *config.Config, log *zerolog.Logger) authprovider.Provider {
	if cfg.AuthAPIURL == "" {
		log.Warn().Msg("AUTH_API_URL not set, auth provider metadata is kept in memory")
		return authprovider.NewStatic()
	}
	return authprovider.NewClient(cfg.AuthAPIURL, cfg.AuthServiceKey, cfg.HTTPTimeout)
}
