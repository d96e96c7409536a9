package collector

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/logger"
)

// Ingester is the slice of the ingestion layer the runner hands batches to.
type Ingester interface {
	IngestBatch(ctx context.Context, source, runID string, posts []models.Post) (found, created int, err error)
}

// Runner executes every collector in sequence and feeds the batches to
// ingestion. One failing source contributes zero posts and never blocks
// the others; all sources in one run share a run id.
type Runner struct {
	collectors []Collector
	ingester   Ingester
}

func NewRunner(ingester Ingester, collectors ...Collector) *Runner {
	return &Runner{
		collectors: collectors,
		ingester:   ingester,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()

	logger.Info("Starting collection run", zap.String("run_id", runID))

	totalNew := 0
	for _, c := range r.collectors {
		source := c.Source()

		posts, err := c.Collect(ctx)
		if err != nil {
			logger.Error("Collector failed",
				zap.String("source", source),
				zap.String("run_id", runID),
				zap.Error(err),
			)
			posts = nil
		}

		metrics.PostsCollected.WithLabelValues(source).Add(float64(len(posts)))

		found, created, err := r.ingester.IngestBatch(ctx, source, runID, posts)
		if err != nil {
			logger.Error("Ingestion failed",
				zap.String("source", source),
				zap.String("run_id", runID),
				zap.Error(err),
			)
			continue
		}

		totalNew += created
		logger.Info("Source collected",
			zap.String("source", source),
			zap.String("run_id", runID),
			zap.Int("posts_found", found),
			zap.Int("posts_new", created),
		)
	}

	logger.Info("Collection run completed",
		zap.String("run_id", runID),
		zap.Int("total_new", totalNew),
	)

	return nil
}
