package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/cache/redis"
	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/logger"
	"github.com/community-pulse/backend/pkg/utils"
)

const (
	defaultTrendingLimit = 10
	maxTrendingLimit     = 50
	triggerTimeout       = 2 * time.Second
	recentLogLimit       = 5
)

// StatsStore is the aggregate read-side slice of the storage client.
type StatsStore interface {
	SentimentStats(ctx context.Context, days int) (*models.SentimentStats, error)
	TrendingTopics(ctx context.Context, limit, days int) ([]models.TopicCount, error)
	TrendingEntities(ctx context.Context, limit int, entityType string, days int) ([]models.EntityCount, error)
	CountPosts(ctx context.Context) (int, error)
	CountAnalyzedPosts(ctx context.Context) (int, error)
	SourceCounts(ctx context.Context) ([]models.SourceCount, error)
	RecentCollectionLogs(ctx context.Context, limit int) ([]models.CollectionLog, error)
}

type StatsHandler struct {
	store StatsStore
	cache *redis.Client

	// Backpressure valve: when too few posts are analyzed, stats requests
	// nudge the analyzer service without ever blocking on it.
	analyzerURL      string
	pendingThreshold int
	pendingBatch     int
	httpClient       *http.Client
}

func NewStatsHandler(store StatsStore, cache *redis.Client, analyzerURL string, pendingThreshold, pendingBatch int) *StatsHandler {
	return &StatsHandler{
		store:            store,
		cache:            cache,
		analyzerURL:      analyzerURL,
		pendingThreshold: pendingThreshold,
		pendingBatch:     pendingBatch,
		httpClient:       &http.Client{Timeout: triggerTimeout},
	}
}

// GetSentimentStats handles GET /sentiment/stats?days=
func (h *StatsHandler) GetSentimentStats(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	cacheKey := utils.HashString(fmt.Sprintf("sentiment:%d", days))

	var cached models.SentimentStats
	if ok, _ := h.cache.GetStats(c.Context(), cacheKey, &cached); ok {
		return c.JSON(cached)
	}

	stats, err := h.store.SentimentStats(c.Context(), days)
	if err != nil {
		logger.Error("Failed to compute sentiment stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute sentiment stats",
		})
	}

	h.maybeTriggerAnalysis(stats.AnalyzedPosts)

	if err := h.cache.SetStats(context.Background(), cacheKey, stats); err != nil {
		logger.Warn("Failed to cache sentiment stats", zap.Error(err))
	}

	return c.JSON(stats)
}

// GetTrendingTopics handles GET /topics/trending?limit=&days=
func (h *StatsHandler) GetTrendingTopics(c *fiber.Ctx) error {
	limit := clampLimit(c.QueryInt("limit", defaultTrendingLimit), defaultTrendingLimit, maxTrendingLimit)
	days := c.QueryInt("days", 0)
	cacheKey := utils.HashString(fmt.Sprintf("topics:%d:%d", limit, days))

	var cached []models.TopicCount
	if ok, _ := h.cache.GetStats(c.Context(), cacheKey, &cached); ok {
		return c.JSON(fiber.Map{"topics": cached, "count": len(cached)})
	}

	topics, err := h.store.TrendingTopics(c.Context(), limit, days)
	if err != nil {
		logger.Error("Failed to list trending topics", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list trending topics",
		})
	}

	if err := h.cache.SetStats(context.Background(), cacheKey, topics); err != nil {
		logger.Warn("Failed to cache trending topics", zap.Error(err))
	}

	return c.JSON(fiber.Map{"topics": topics, "count": len(topics)})
}

// GetTrendingEntities handles GET /trending/entities?limit=&entity_type=&days=
func (h *StatsHandler) GetTrendingEntities(c *fiber.Ctx) error {
	limit := clampLimit(c.QueryInt("limit", defaultTrendingLimit), defaultTrendingLimit, maxTrendingLimit)
	days := c.QueryInt("days", 0)
	entityType := c.Query("entity_type")

	entities, err := h.store.TrendingEntities(c.Context(), limit, entityType, days)
	if err != nil {
		logger.Error("Failed to list trending entities", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list trending entities",
		})
	}

	return c.JSON(fiber.Map{"entities": entities, "count": len(entities)})
}

// GetStats handles GET /stats with a collection overview.
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	ctx := c.Context()

	total, err := h.store.CountPosts(ctx)
	if err != nil {
		logger.Error("Failed to count posts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	analyzed, err := h.store.CountAnalyzedPosts(ctx)
	if err != nil {
		logger.Error("Failed to count analyzed posts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	sources, err := h.store.SourceCounts(ctx)
	if err != nil {
		logger.Error("Failed to count posts by source", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	logs, err := h.store.RecentCollectionLogs(ctx, recentLogLimit)
	if err != nil {
		logger.Error("Failed to load collection logs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute stats",
		})
	}

	return c.JSON(fiber.Map{
		"total_posts":    total,
		"analyzed_posts": analyzed,
		"sources":        sources,
		"recent_runs":    logs,
	})
}

// maybeTriggerAnalysis fires a detached request to the analyzer when the
// analyzed count sits under the threshold. The request races a short
// timeout and a timeout counts as delivered: the analyzer keeps working
// after it stops reading, and the stats response must never wait on it.
func (h *StatsHandler) maybeTriggerAnalysis(analyzed int) {
	if h.analyzerURL == "" || analyzed >= h.pendingThreshold {
		return
	}

	metrics.AnalysisTriggers.Inc()
	url := fmt.Sprintf("%s/analyze/pending?limit=%d", h.analyzerURL, h.pendingBatch)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
		if err != nil {
			logger.Warn("Failed to build analyzer trigger", zap.Error(err))
			return
		}

		resp, err := h.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				logger.Debug("Analyzer trigger timed out, treated as delivered")
				return
			}
			logger.Warn("Analyzer trigger failed", zap.Error(err))
			return
		}
		defer resp.Body.Close()

		logger.Debug("Analyzer trigger delivered", zap.Int("status", resp.StatusCode))
	}()
}
