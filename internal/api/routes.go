package api

import (
	"github.com/anacondy/examwatch/internal/analyze"
	"github.com/anacondy/examwatch/internal/config"
	"github.com/anacondy/examwatch/internal/middleware"
	"github.com/anacondy/examwatch/internal/store"
	"github.com/anacondy/examwatch/internal/syncer"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all the routes for the application.
func SetupRoutes(app *fiber.App, cfg *config.Config, s *store.Store, a *analyze.Analyzer, o *syncer.Orchestrator) {
	handlers := NewHandlers(cfg, s, a, o)

	// API group with versioning
	api := app.Group("/api/v1")

	api.Get("/health", handlers.HealthCheck)
	api.Get("/search", handlers.Search)
	api.Get("/announcements", handlers.ListAnnouncements)
	api.Get("/categories", handlers.ListCategories)
	api.Post("/analyze", handlers.Analyze)

	// The sync trigger mutates the store; gate it behind the admin key when
	// one is configured.
	api.Post("/sync", middleware.APIKeyAuth(cfg.AdminAPIKey), handlers.RunSync)

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
