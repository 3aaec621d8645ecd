package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anacondy/examwatch/internal/analyze"
	"github.com/anacondy/examwatch/internal/api"
	"github.com/anacondy/examwatch/internal/cache"
	"github.com/anacondy/examwatch/internal/config"
	"github.com/anacondy/examwatch/internal/fetch"
	"github.com/anacondy/examwatch/internal/logger"
	"github.com/anacondy/examwatch/internal/middleware"
	"github.com/anacondy/examwatch/internal/store"
	"github.com/anacondy/examwatch/internal/syncer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	// Open the announcement store
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StorePath).Msg("Failed to open store")
	}
	defer func() {
		log.Info().Msg("Closing store...")
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing store")
		}
	}()

	// Analysis cache: Redis when configured, in-process LRU otherwise
	var analysisCache cache.AnalysisCache
	if cfg.RedisURL != "" {
		analysisCache, err = cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis cache")
		}
	} else {
		analysisCache, err = cache.NewLRUCache(cfg.AnalysisCacheSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize LRU cache")
		}
	}
	defer func() {
		if err := analysisCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing analysis cache")
		}
	}()

	analyzer := analyze.New(analysisCache, analyze.Options{
		DownloadTimeout:   cfg.DownloadTimeout,
		MaxDownloadBytes:  cfg.MaxDownloadBytes,
		TranslateEndpoint: cfg.TranslateEndpoint,
	})

	fetcher, err := fetch.New(cfg.ListingURL(), cfg.FetchTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize fetcher")
	}

	orch := syncer.New(fetcher, analyzer, st, syncer.Options{
		Workers:          cfg.AnalyzeWorkers,
		MaxAnnouncements: cfg.MaxAnnouncements,
		AnalyzeTimeout:   cfg.DownloadTimeout + 30*time.Second,
	})

	// An empty store at startup triggers one background sync so the first
	// page load has data.
	go func() {
		count, err := st.Count(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("Initial count failed")
			return
		}
		if count > 0 {
			return
		}
		log.Info().Msg("Store is empty, running initial sync")
		if _, err := orch.RunSync(context.Background()); err != nil {
			log.Error().Err(err).Msg("Initial sync failed")
		}
	}()

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

	// Setup API routes
	api.SetupRoutes(app, cfg, st, analyzer, orch)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
