package analysis

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/logger"
)

// Store is the slice of the storage client the analyzer needs.
type Store interface {
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	ListPendingPosts(ctx context.Context, limit int) ([]models.Post, error)
	SaveAnalysis(ctx context.Context, postID int64, result models.SentimentResult, topics []models.Topic, entities []models.Entity) error
}

// CacheInvalidator drops cached aggregates that analysis writes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Analyzer runs the per-post analysis path: classify sentiment, extract
// topics and entities, persist everything in one unit.
type Analyzer struct {
	store      Store
	classifier Classifier // hosted model; nil when no API key is configured
	fallback   RuleBased
	cache      CacheInvalidator
}

func NewAnalyzer(store Store, classifier Classifier) *Analyzer {
	return &Analyzer{
		store:      store,
		classifier: classifier,
	}
}

// WithCache registers a cache to invalidate after analysis writes.
func (a *Analyzer) WithCache(cache CacheInvalidator) *Analyzer {
	a.cache = cache
	return a
}

// AnalyzePost analyzes one post. Missing and already-analyzed posts are a
// no-op, which keeps the operation idempotent under repeated dispatch.
func (a *Analyzer) AnalyzePost(ctx context.Context, postID int64) error {
	post, err := a.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		logger.Debug("Post not found, skipping analysis", zap.Int64("post_id", postID))
		return nil
	}
	if post.Analyzed {
		logger.Debug("Post already analyzed, skipping", zap.Int64("post_id", postID))
		return nil
	}

	start := time.Now()

	text := strings.TrimSpace(post.Title + " " + post.Content)

	result, classifierName := a.classify(ctx, text)

	topicNames := ExtractTopics(text)
	topics := make([]models.Topic, 0, len(topicNames))
	for _, name := range topicNames {
		topics = append(topics, models.Topic{Topic: name, RelevanceScore: topicRelevance})
	}

	entities := ExtractEntities(text)

	if err := a.store.SaveAnalysis(ctx, post.ID, result, topics, entities); err != nil {
		metrics.AnalysesTotal.WithLabelValues(classifierName, "error").Inc()
		return err
	}

	metrics.AnalysesTotal.WithLabelValues(classifierName, "success").Inc()
	metrics.SentimentLabels.WithLabelValues(result.Sentiment).Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if a.cache != nil {
		if err := a.cache.Invalidate(ctx); err != nil {
			logger.Warn("Failed to invalidate stats cache", zap.Error(err))
		}
	}

	logger.Info("Post analyzed",
		zap.Int64("post_id", post.ID),
		zap.String("sentiment", result.Sentiment),
		zap.String("classifier", classifierName),
		zap.Int("topics", len(topics)),
		zap.Int("entities", len(entities)),
	)

	return nil
}

// classify prefers the hosted model and falls back to the rule-based
// counter on any failure.
func (a *Analyzer) classify(ctx context.Context, text string) (models.SentimentResult, string) {
	if a.classifier != nil {
		result, err := a.classifier.Classify(ctx, text)
		if err == nil {
			return result, "llm"
		}
		logger.Warn("Model classification failed, falling back to rules", zap.Error(err))
	}

	result, _ := a.fallback.Classify(ctx, text)
	return result, "rules"
}

// QueuePending lists unanalyzed posts and processes them in a detached
// goroutine, returning the queued count immediately. Per-post failures are
// logged; the post stays pending for a future run.
func (a *Analyzer) QueuePending(ctx context.Context, limit int) (int, error) {
	pending, err := a.store.ListPendingPosts(ctx, limit)
	if err != nil {
		return 0, err
	}

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		for _, post := range pending {
			if err := a.AnalyzePost(bg, post.ID); err != nil {
				logger.Error("Pending analysis failed",
					zap.Int64("post_id", post.ID),
					zap.Error(err),
				)
			}
		}
	}()

	return len(pending), nil
}
