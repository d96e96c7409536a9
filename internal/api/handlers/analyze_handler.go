package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/analysis"
	"github.com/community-pulse/backend/pkg/logger"
)

const (
	defaultPendingBatch = 20
	maxPendingBatch     = 100
	analyzeTimeout      = 2 * time.Minute
)

type AnalyzeHandler struct {
	analyzer *analysis.Analyzer
}

func NewAnalyzeHandler(analyzer *analysis.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// AnalyzePost handles POST /analyze/:post_id. The work runs in the
// background; the response only acknowledges the queue.
func (h *AnalyzeHandler) AnalyzePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("post_id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()
		if err := h.analyzer.AnalyzePost(ctx, int64(id)); err != nil {
			logger.Error("Background analysis failed", zap.Int("post_id", id), zap.Error(err))
		}
	}()

	return c.JSON(fiber.Map{
		"status":  "queued",
		"post_id": id,
	})
}

// AnalyzePending handles POST /analyze/pending?limit=
func (h *AnalyzeHandler) AnalyzePending(c *fiber.Ctx) error {
	limit := clampLimit(c.QueryInt("limit", defaultPendingBatch), defaultPendingBatch, maxPendingBatch)

	queued, err := h.analyzer.QueuePending(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to queue pending posts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to queue pending posts",
		})
	}

	return c.JSON(fiber.Map{
		"status":       "processing",
		"posts_queued": queued,
	})
}
