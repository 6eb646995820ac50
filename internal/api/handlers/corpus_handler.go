package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/AmartyaKumar11/X-NOSIS/internal/kg/neo4j"
	"github.com/AmartyaKumar11/X-NOSIS/internal/metrics"
	"github.com/AmartyaKumar11/X-NOSIS/internal/storage/models"
	"github.com/AmartyaKumar11/X-NOSIS/internal/terms"
	"github.com/AmartyaKumar11/X-NOSIS/pkg/logger"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 200
)

type CorpusStore interface {
	terms.Loader
	Stats(ctx context.Context) (*models.CorpusStats, error)
	SearchTerms(ctx context.Context, prefix string, category terms.Category, limit int) ([]terms.TermRecord, error)
}

type CacheInvalidator interface {
	InvalidateAnalyses(ctx context.Context) (int, error)
}

type ConditionFinder interface {
	RelatedConditions(ctx context.Context, term string, limit int) ([]neo4j.ConditionStat, error)
}

type CorpusHandler struct {
	store    CorpusStore
	registry *terms.Registry
	cache    CacheInvalidator
	graph    ConditionFinder
}

// NewCorpusHandler wires the corpus routes. cache and graph are optional.
func NewCorpusHandler(store CorpusStore, registry *terms.Registry, cache CacheInvalidator, graph ConditionFinder) *CorpusHandler {
	return &CorpusHandler{
		store:    store,
		registry: registry,
		cache:    cache,
		graph:    graph,
	}
}

func (h *CorpusHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.store.Stats(c.UserContext())
	if err != nil {
		logger.Error("Failed to load corpus stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load corpus stats",
		})
	}

	resp := fiber.Map{
		"store":    stats,
		"snapshot": nil,
	}
	if snap, err := h.registry.Current(); err == nil {
		resp["snapshot"] = snap.Stats()
	}
	return c.JSON(resp)
}

func (h *CorpusHandler) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	var category terms.Category
	if raw := c.Query("category"); raw != "" {
		parsed, err := terms.ParseCategory(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unknown category",
			})
		}
		category = parsed
	}

	limit, err := parseLimit(c.Query("limit"), defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	results, err := h.store.SearchTerms(c.UserContext(), terms.Normalize(q), category, limit)
	if err != nil {
		logger.Error("Failed to search terms", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search terms",
		})
	}
	if results == nil {
		results = []terms.TermRecord{}
	}

	return c.JSON(fiber.Map{
		"query":   q,
		"results": results,
		"count":   len(results),
	})
}

func (h *CorpusHandler) Reload(c *fiber.Ctx) error {
	start := time.Now()
	snap, err := h.registry.Reload(c.UserContext(), h.store)
	if err != nil {
		metrics.CorpusReloads.WithLabelValues("error").Inc()
		logger.Error("Failed to reload corpus", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reload corpus",
		})
	}
	metrics.CorpusReloads.WithLabelValues("success").Inc()
	metrics.CorpusTerms.Set(float64(snap.Len()))

	if h.cache != nil {
		if _, err := h.cache.InvalidateAnalyses(c.UserContext()); err != nil {
			logger.Warn("Failed to invalidate analysis cache", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{
		"version":     snap.Version(),
		"terms":       snap.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

func (h *CorpusHandler) RelatedConditions(c *fiber.Ctx) error {
	if h.graph == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Knowledge graph is not enabled",
		})
	}

	term := terms.Normalize(c.Query("term"))
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "term is required",
		})
	}

	limit, err := parseLimit(c.Query("limit"), 10, 50)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a positive integer",
		})
	}

	conditions, err := h.graph.RelatedConditions(c.UserContext(), term, limit)
	if err != nil {
		logger.Error("Failed to query knowledge graph", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to query knowledge graph",
		})
	}
	if conditions == nil {
		conditions = []neo4j.ConditionStat{}
	}

	return c.JSON(fiber.Map{
		"term":       term,
		"conditions": conditions,
	})
}
