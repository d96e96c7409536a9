package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/pkg/logger"
)

// Client wraps the relational store shared by all services. The driver is
// "postgres" in production and "sqlite3" for local runs and tests; queries
// are written with ? placeholders and passed through Rebind.
type Client struct {
	db     *sqlx.DB
	driver string
}

func NewClient(driver, dsn string) (*Client, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	logger.Info("Database client initialized", zap.String("driver", driver))

	return &Client{db: db, driver: driver}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) rebind(query string) string {
	return c.db.Rebind(query)
}

func (c *Client) InitSchema() error {
	idCol := "BIGSERIAL PRIMARY KEY"
	boolDefault := "BOOLEAN NOT NULL DEFAULT FALSE"
	if c.driver == "sqlite3" {
		idCol = "INTEGER PRIMARY KEY AUTOINCREMENT"
		boolDefault = "BOOLEAN NOT NULL DEFAULT 0"
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS posts (
		id %[1]s,
		source VARCHAR(50) NOT NULL,
		source_url VARCHAR(2048) NOT NULL UNIQUE,
		title TEXT,
		content TEXT,
		author_name VARCHAR(255),
		author_url VARCHAR(2048),
		published_at TIMESTAMP,
		collected_at TIMESTAMP NOT NULL,
		tags TEXT,
		extra_metadata TEXT,
		analyzed %[2]s
	);
	CREATE INDEX IF NOT EXISTS idx_posts_source ON posts(source);
	CREATE INDEX IF NOT EXISTS idx_posts_analyzed ON posts(analyzed);
	CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published_at);

	CREATE TABLE IF NOT EXISTS sentiment_analysis (
		id %[1]s,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		sentiment VARCHAR(20),
		confidence DOUBLE PRECISION,
		positive_score DOUBLE PRECISION,
		negative_score DOUBLE PRECISION,
		neutral_score DOUBLE PRECISION,
		analyzed_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sentiment_post ON sentiment_analysis(post_id);
	CREATE INDEX IF NOT EXISTS idx_sentiment_analyzed_at ON sentiment_analysis(analyzed_at);

	CREATE TABLE IF NOT EXISTS topics (
		id %[1]s,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		topic VARCHAR(100),
		relevance_score DOUBLE PRECISION
	);
	CREATE INDEX IF NOT EXISTS idx_topics_post ON topics(post_id);
	CREATE INDEX IF NOT EXISTS idx_topics_topic ON topics(topic);

	CREATE TABLE IF NOT EXISTS entities (
		id %[1]s,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		entity_type VARCHAR(50),
		entity_name VARCHAR(255),
		mention_count INTEGER DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_entities_post ON entities(post_id);
	CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(entity_name);

	CREATE TABLE IF NOT EXISTS collection_log (
		id %[1]s,
		run_id VARCHAR(36),
		source VARCHAR(50),
		collected_at TIMESTAMP NOT NULL,
		posts_found INTEGER,
		posts_new INTEGER,
		status VARCHAR(20),
		error_message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_collection_log_at ON collection_log(collected_at);
	`, idCol, boolDefault)

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}
