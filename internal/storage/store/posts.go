package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

// InsertPost inserts a post unless its source_url is already present.
// A unique-key conflict (including a race between concurrent runs) is not
// an error: the post is reported as not inserted.
func (c *Client) InsertPost(ctx context.Context, post *models.Post) (bool, error) {
	if post.CollectedAt.IsZero() {
		post.CollectedAt = time.Now().UTC()
	}
	if post.Tags == nil {
		post.Tags = models.StringSlice{}
	}
	if post.ExtraMetadata == nil {
		post.ExtraMetadata = models.JSONMap{}
	}

	query := c.rebind(`
		INSERT INTO posts (source, source_url, title, content, author_name, author_url,
			published_at, collected_at, tags, extra_metadata, analyzed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_url) DO NOTHING
	`)

	res, err := c.db.ExecContext(ctx, query,
		post.Source,
		post.SourceURL,
		post.Title,
		post.Content,
		post.AuthorName,
		post.AuthorURL,
		post.PublishedAt,
		post.CollectedAt,
		post.Tags,
		post.ExtraMetadata,
		post.Analyzed,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert post: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}

	return affected > 0, nil
}

// PostExists reports whether a post with the given source URL is stored.
func (c *Client) PostExists(ctx context.Context, sourceURL string) (bool, error) {
	var count int
	query := c.rebind(`SELECT COUNT(*) FROM posts WHERE source_url = ?`)
	if err := c.db.GetContext(ctx, &count, query, sourceURL); err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return count > 0, nil
}

// GetPost returns the post with the given id, or nil when absent.
func (c *Client) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	query := c.rebind(`
		SELECT id, source, source_url, title, content, author_name, author_url,
			published_at, collected_at, tags, extra_metadata, analyzed
		FROM posts WHERE id = ?
	`)
	err := c.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListPosts returns posts ordered by publication time descending.
func (c *Client) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	query := c.rebind(`
		SELECT id, source, source_url, title, content, author_name, author_url,
			published_at, collected_at, tags, extra_metadata, analyzed
		FROM posts
		ORDER BY published_at DESC
		LIMIT ?
	`)
	if err := c.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// ListPendingPosts returns unanalyzed posts, oldest collected first.
func (c *Client) ListPendingPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	query := c.rebind(`
		SELECT id, source, source_url, title, content, author_name, author_url,
			published_at, collected_at, tags, extra_metadata, analyzed
		FROM posts
		WHERE analyzed = ?
		ORDER BY collected_at ASC
		LIMIT ?
	`)
	if err := c.db.SelectContext(ctx, &posts, query, false, limit); err != nil {
		return nil, fmt.Errorf("failed to list pending posts: %w", err)
	}
	return posts, nil
}

func (c *Client) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := c.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (c *Client) CountAnalyzedPosts(ctx context.Context) (int, error) {
	var count int
	query := c.rebind(`SELECT COUNT(*) FROM posts WHERE analyzed = ?`)
	if err := c.db.GetContext(ctx, &count, query, true); err != nil {
		return 0, fmt.Errorf("failed to count analyzed posts: %w", err)
	}
	return count, nil
}

// SourceCounts groups stored posts by source.
func (c *Client) SourceCounts(ctx context.Context) ([]models.SourceCount, error) {
	counts := []models.SourceCount{}
	query := `SELECT source, COUNT(*) AS count FROM posts GROUP BY source ORDER BY count DESC`
	if err := c.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to count posts by source: %w", err)
	}
	return counts, nil
}
