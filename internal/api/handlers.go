package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/anacondy/examwatch/internal/analyze"
	"github.com/anacondy/examwatch/internal/config"
	"github.com/anacondy/examwatch/internal/logger"
	"github.com/anacondy/examwatch/internal/middleware"
	"github.com/anacondy/examwatch/internal/models"
	"github.com/anacondy/examwatch/internal/query"
	"github.com/anacondy/examwatch/internal/store"
	"github.com/anacondy/examwatch/internal/syncer"
	"github.com/gofiber/fiber/v2"
)

// maxListLimit caps the announcements list endpoint.
const maxListLimit = 100

type Handlers struct {
	config    *config.Config
	store     *store.Store
	searcher  *query.Searcher
	analyzer  *analyze.Analyzer
	orch      *syncer.Orchestrator
	validator *middleware.Validator
}

func NewHandlers(cfg *config.Config, s *store.Store, a *analyze.Analyzer, o *syncer.Orchestrator) *Handlers {
	return &Handlers{
		config:    cfg,
		store:     s,
		searcher:  query.NewSearcher(s),
		analyzer:  a,
		orch:      o,
		validator: middleware.NewValidator(),
	}
}

// HealthCheck handles GET /api/v1/health: capability flags plus liveness.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":              "ok",
		"time":                time.Now().Format(time.RFC3339),
		"pdf_support":         true,
		"language_detection":  true,
		"translation_support": h.analyzer.CanTranslate(),
	})
}

// RunSync handles POST /api/v1/sync: one complete fetch-analyze-store-cleanup
// cycle. A second trigger while a cycle is running is rejected, not queued.
func (h *Handlers) RunSync(c *fiber.Ctx) error {
	stats, err := h.orch.RunSync(c.Context())
	if err != nil {
		if errors.Is(err, syncer.ErrSyncInFlight) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"status":  "error",
				"message": "a sync cycle is already running",
			})
		}
		logger.Get().Error().Err(err).Msg("sync cycle aborted")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":    "success",
		"count":     stats.Processed,
		"total":     stats.Total,
		"max_limit": stats.MaxLimit,
		"message":   stats.Message,
	})
}

// Search handles GET /api/v1/search?q=: structured free-text search. An
// empty query returns an empty list by convention.
func (h *Handlers) Search(c *fiber.Ctx) error {
	q := c.Query("q")

	results, err := h.searcher.Search(c.Context(), q)
	if err != nil {
		logger.Get().Error().Err(err).Str("query", q).Msg("search failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "search failed",
		})
	}

	return c.JSON(results)
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title"`
	Force bool   `json:"force"`
}

// Analyze handles POST /api/v1/analyze: runs the document pipeline for one
// URL on demand.
func (h *Handlers) Analyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": middleware.FieldErrors(err),
		})
	}

	res, err := h.analyzer.Analyze(c.Context(), req.URL, req.Title, req.Force)
	if err != nil {
		logger.Get().Warn().Err(err).Str("url", req.URL).Msg("on-demand analysis failed")
		if res == nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		// Partial result: whatever stages completed, with the error marker.
		return c.Status(fiber.StatusBadGateway).JSON(res)
	}

	return c.JSON(res)
}

// ListAnnouncements handles GET /api/v1/announcements with optional category
// and limit filters.
func (h *Handlers) ListAnnouncements(c *fiber.Ctx) error {
	category := c.Query("category")

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	switch {
	case limit > maxListLimit:
		limit = maxListLimit
	case limit <= 0:
		limit = 50
	}

	items, err := h.store.List(c.Context(), category, limit)
	if err != nil {
		logger.Get().Error().Err(err).Msg("listing announcements failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list announcements",
		})
	}
	if items == nil {
		items = []models.Announcement{}
	}

	return c.JSON(fiber.Map{
		"total": len(items),
		"items": items,
	})
}

// ListCategories handles GET /api/v1/categories: distinct tags in the store.
func (h *Handlers) ListCategories(c *fiber.Ctx) error {
	cats, err := h.store.Categories(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("listing categories failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list categories",
		})
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(cats)
}
