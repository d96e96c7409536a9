package ingestion

import (
	"context"

	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/logger"
)

// Store is the slice of the storage client the ingester writes through.
type Store interface {
	PostExists(ctx context.Context, sourceURL string) (bool, error)
	InsertPost(ctx context.Context, post *models.Post) (bool, error)
	InsertCollectionLog(ctx context.Context, log *models.CollectionLog) error
}

// Ingester persists normalized posts with source-URL dedup and writes one
// CollectionLog row per batch.
type Ingester struct {
	store Store
}

func NewIngester(store Store) *Ingester {
	return &Ingester{store: store}
}

// IngestBatch inserts each post unless its URL is already stored. A
// conflict lost to a concurrent run counts as a duplicate, not a failure.
// A batch-level persistence failure is recorded as an error log row
// instead of silently dropping the run.
func (i *Ingester) IngestBatch(ctx context.Context, source, runID string, posts []models.Post) (int, int, error) {
	found := len(posts)
	created := 0

	for idx := range posts {
		post := posts[idx]

		exists, err := i.store.PostExists(ctx, post.SourceURL)
		if err != nil {
			return i.failBatch(ctx, source, runID, found, created, err)
		}
		if exists {
			metrics.PostsIngested.WithLabelValues(source, "duplicate").Inc()
			continue
		}

		inserted, err := i.store.InsertPost(ctx, &post)
		if err != nil {
			return i.failBatch(ctx, source, runID, found, created, err)
		}
		if !inserted {
			// Lost a race with a concurrent run holding the same URL.
			metrics.PostsIngested.WithLabelValues(source, "duplicate").Inc()
			continue
		}

		created++
		metrics.PostsIngested.WithLabelValues(source, "new").Inc()
	}

	log := &models.CollectionLog{
		RunID:      runID,
		Source:     source,
		PostsFound: found,
		PostsNew:   created,
		Status:     "success",
	}
	if err := i.store.InsertCollectionLog(ctx, log); err != nil {
		logger.Error("Failed to write collection log",
			zap.String("source", source),
			zap.Error(err),
		)
	}

	metrics.CollectionRuns.WithLabelValues(source, "success").Inc()
	return found, created, nil
}

func (i *Ingester) failBatch(ctx context.Context, source, runID string, found, created int, cause error) (int, int, error) {
	log := &models.CollectionLog{
		RunID:        runID,
		Source:       source,
		PostsFound:   found,
		PostsNew:     created,
		Status:       "error",
		ErrorMessage: cause.Error(),
	}
	if err := i.store.InsertCollectionLog(ctx, log); err != nil {
		logger.Error("Failed to write error collection log",
			zap.String("source", source),
			zap.Error(err),
		)
	}

	metrics.CollectionRuns.WithLabelValues(source, "error").Inc()
	return found, created, cause
}
