package models

import "time"

// Post is one externally collected content item normalized into the
// common schema. SourceURL is the dedup key across all sources.
type Post struct {
	ID            int64       `db:"id" json:"id"`
	Source        string      `db:"source" json:"source"`
	SourceURL     string      `db:"source_url" json:"source_url"`
	Title         string      `db:"title" json:"title"`
	Content       string      `db:"content" json:"content"`
	AuthorName    string      `db:"author_name" json:"author_name"`
	AuthorURL     string      `db:"author_url" json:"author_url"`
	PublishedAt   *time.Time  `db:"published_at" json:"published_at,omitempty"`
	CollectedAt   time.Time   `db:"collected_at" json:"collected_at"`
	Tags          StringSlice `db:"tags" json:"tags"`
	ExtraMetadata JSONMap     `db:"extra_metadata" json:"extra_metadata"`
	Analyzed      bool        `db:"analyzed" json:"analyzed"`
}

// SentimentResult is a classifier verdict before it is persisted.
// The three scores are intended to sum to 1.0.
type SentimentResult struct {
	Sentiment     string  `json:"sentiment"`
	Confidence    float64 `json:"confidence"`
	PositiveScore float64 `json:"positive_score"`
	NegativeScore float64 `json:"negative_score"`
	NeutralScore  float64 `json:"neutral_score"`
}

type SentimentAnalysis struct {
	ID            int64     `db:"id" json:"id"`
	PostID        int64     `db:"post_id" json:"post_id"`
	Sentiment     string    `db:"sentiment" json:"sentiment"`
	Confidence    float64   `db:"confidence" json:"confidence"`
	PositiveScore float64   `db:"positive_score" json:"positive_score"`
	NegativeScore float64   `db:"negative_score" json:"negative_score"`
	NeutralScore  float64   `db:"neutral_score" json:"neutral_score"`
	AnalyzedAt    time.Time `db:"analyzed_at" json:"analyzed_at"`
}

type Topic struct {
	ID             int64   `db:"id" json:"id"`
	PostID         int64   `db:"post_id" json:"post_id"`
	Topic          string  `db:"topic" json:"topic"`
	RelevanceScore float64 `db:"relevance_score" json:"relevance_score"`
}

type Entity struct {
	ID           int64  `db:"id" json:"id"`
	PostID       int64  `db:"post_id" json:"post_id"`
	EntityType   string `db:"entity_type" json:"entity_type"`
	EntityName   string `db:"entity_name" json:"entity_name"`
	MentionCount int    `db:"mention_count" json:"mention_count"`
}

// CollectionLog is one append-only audit row per collector run per source.
// RunID correlates the rows written by a single collect-all run.
type CollectionLog struct {
	ID           int64     `db:"id" json:"id"`
	RunID        string    `db:"run_id" json:"run_id"`
	Source       string    `db:"source" json:"source"`
	CollectedAt  time.Time `db:"collected_at" json:"collected_at"`
	PostsFound   int       `db:"posts_found" json:"posts_found"`
	PostsNew     int       `db:"posts_new" json:"posts_new"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
}

// Read-side aggregate shapes.

type SentimentStats struct {
	TotalPosts       int     `json:"total_posts"`
	AnalyzedPosts    int     `json:"analyzed_posts"`
	Positive         int     `json:"positive"`
	Negative         int     `json:"negative"`
	Neutral          int     `json:"neutral"`
	AverageSentiment float64 `json:"average_sentiment"`
}

type TopicCount struct {
	Topic string `db:"topic" json:"topic"`
	Count int    `db:"count" json:"count"`
}

type EntityCount struct {
	EntityName string `db:"entity_name" json:"entity_name"`
	EntityType string `db:"entity_type" json:"entity_type"`
	Mentions   int    `db:"mentions" json:"mentions"`
}

type SourceCount struct {
	Source string `db:"source" json:"source"`
	Count  int    `db:"count" json:"count"`
}
