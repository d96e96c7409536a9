package store

import (
	"context"
	"fmt"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

// SaveAnalysis persists the full analysis result for one post — sentiment
// row, topic rows, entity rows — and flips the analyzed flag, all inside a
// single transaction so a partial failure leaves the post pending.
func (c *Client) SaveAnalysis(ctx context.Context, postID int64, result models.SentimentResult, topics []models.Topic, entities []models.Entity) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	sentimentQuery := c.rebind(`
		INSERT INTO sentiment_analysis (post_id, sentiment, confidence,
			positive_score, negative_score, neutral_score, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := tx.ExecContext(ctx, sentimentQuery,
		postID,
		result.Sentiment,
		result.Confidence,
		result.PositiveScore,
		result.NegativeScore,
		result.NeutralScore,
		now,
	); err != nil {
		return fmt.Errorf("failed to insert sentiment: %w", err)
	}

	topicQuery := c.rebind(`INSERT INTO topics (post_id, topic, relevance_score) VALUES (?, ?, ?)`)
	for _, t := range topics {
		if _, err := tx.ExecContext(ctx, topicQuery, postID, t.Topic, t.RelevanceScore); err != nil {
			return fmt.Errorf("failed to insert topic %q: %w", t.Topic, err)
		}
	}

	entityQuery := c.rebind(`INSERT INTO entities (post_id, entity_type, entity_name, mention_count) VALUES (?, ?, ?, ?)`)
	for _, e := range entities {
		if _, err := tx.ExecContext(ctx, entityQuery, postID, e.EntityType, e.EntityName, e.MentionCount); err != nil {
			return fmt.Errorf("failed to insert entity %q: %w", e.EntityName, err)
		}
	}

	markQuery := c.rebind(`UPDATE posts SET analyzed = ? WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, markQuery, true, postID); err != nil {
		return fmt.Errorf("failed to mark post analyzed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}

	return nil
}

// SentimentStats aggregates label counts and the average of
// positive_score - negative_score over analyzed posts. days limits the
// window by analysis time when positive; zero means all time. The average
// is 0.0 when no analyzed posts fall in the window.
func (c *Client) SentimentStats(ctx context.Context, days int) (*models.SentimentStats, error) {
	stats := &models.SentimentStats{}

	var err error
	if stats.TotalPosts, err = c.CountPosts(ctx); err != nil {
		return nil, err
	}
	if stats.AnalyzedPosts, err = c.CountAnalyzedPosts(ctx); err != nil {
		return nil, err
	}

	query := `SELECT sentiment, COUNT(*) AS count FROM sentiment_analysis`
	args := []interface{}{}
	if days > 0 {
		query += ` WHERE analyzed_at >= ?`
		args = append(args, windowStart(days))
	}
	query += ` GROUP BY sentiment`

	rows := []struct {
		Sentiment string `db:"sentiment"`
		Count     int    `db:"count"`
	}{}
	if err := c.db.SelectContext(ctx, &rows, c.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to count sentiment labels: %w", err)
	}
	for _, r := range rows {
		switch r.Sentiment {
		case "positive":
			stats.Positive = r.Count
		case "negative":
			stats.Negative = r.Count
		case "neutral":
			stats.Neutral = r.Count
		}
	}

	avgQuery := `SELECT COALESCE(AVG(positive_score - negative_score), 0) FROM sentiment_analysis`
	avgArgs := []interface{}{}
	if days > 0 {
		avgQuery += ` WHERE analyzed_at >= ?`
		avgArgs = append(avgArgs, windowStart(days))
	}
	if err := c.db.GetContext(ctx, &stats.AverageSentiment, c.rebind(avgQuery), avgArgs...); err != nil {
		return nil, fmt.Errorf("failed to average sentiment: %w", err)
	}

	return stats, nil
}

// TrendingTopics groups topics by occurrence count descending, optionally
// limited to posts collected within the last days.
func (c *Client) TrendingTopics(ctx context.Context, limit, days int) ([]models.TopicCount, error) {
	query := `
		SELECT t.topic, COUNT(*) AS count
		FROM topics t
		JOIN posts p ON p.id = t.post_id
	`
	args := []interface{}{}
	if days > 0 {
		query += ` WHERE p.collected_at >= ?`
		args = append(args, windowStart(days))
	}
	query += ` GROUP BY t.topic ORDER BY count DESC LIMIT ?`
	args = append(args, limit)

	topics := []models.TopicCount{}
	if err := c.db.SelectContext(ctx, &topics, c.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query trending topics: %w", err)
	}
	return topics, nil
}

// TrendingEntities groups entities by (name, type) and ranks by summed
// mention count. entityType filters when non-empty.
func (c *Client) TrendingEntities(ctx context.Context, limit int, entityType string, days int) ([]models.EntityCount, error) {
	query := `
		SELECT e.entity_name, e.entity_type, SUM(e.mention_count) AS mentions
		FROM entities e
		JOIN posts p ON p.id = e.post_id
	`
	conds := []string{}
	args := []interface{}{}
	if entityType != "" {
		conds = append(conds, `e.entity_type = ?`)
		args = append(args, entityType)
	}
	if days > 0 {
		conds = append(conds, `p.collected_at >= ?`)
		args = append(args, windowStart(days))
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` GROUP BY e.entity_name, e.entity_type ORDER BY mentions DESC LIMIT ?`
	args = append(args, limit)

	entities := []models.EntityCount{}
	if err := c.db.SelectContext(ctx, &entities, c.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query trending entities: %w", err)
	}
	return entities, nil
}

func windowStart(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}
