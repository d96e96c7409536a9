package store

import (
	"context"
	"fmt"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

// InsertCollectionLog appends one audit row for a collector run.
func (c *Client) InsertCollectionLog(ctx context.Context, log *models.CollectionLog) error {
	if log.CollectedAt.IsZero() {
		log.CollectedAt = time.Now().UTC()
	}

	query := c.rebind(`
		INSERT INTO collection_log (run_id, source, collected_at, posts_found, posts_new, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := c.db.ExecContext(ctx, query,
		log.RunID,
		log.Source,
		log.CollectedAt,
		log.PostsFound,
		log.PostsNew,
		log.Status,
		log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection log: %w", err)
	}
	return nil
}

// RecentCollectionLogs returns the newest audit rows.
func (c *Client) RecentCollectionLogs(ctx context.Context, limit int) ([]models.CollectionLog, error) {
	logs := []models.CollectionLog{}
	query := c.rebind(`
		SELECT id, run_id, source, collected_at, posts_found, posts_new, status, error_message
		FROM collection_log
		ORDER BY collected_at DESC
		LIMIT ?
	`)
	if err := c.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list collection logs: %w", err)
	}
	return logs, nil
}
