package store

import (
	"context"
	"math"
	"testing"

	"github.com/community-pulse/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A second pooled connection would see a fresh empty in-memory
	// database, so pin the pool to one.
	c.db.SetMaxOpenConns(1)
	t.Cleanup(func() { c.Close() })

	if err := c.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	return c
}

func insertTestPost(t *testing.T, c *Client, url string) int64 {
	t.Helper()

	inserted, err := c.InsertPost(context.Background(), &models.Post{
		Source:    "devto",
		SourceURL: url,
		Title:     "Post",
		Content:   "content",
		Tags:      models.StringSlice{"pycon"},
	})
	if err != nil {
		t.Fatalf("failed to insert post: %v", err)
	}
	if !inserted {
		t.Fatalf("post %q was not inserted", url)
	}

	var id int64
	if err := c.db.Get(&id, "SELECT id FROM posts WHERE source_url = ?", url); err != nil {
		t.Fatalf("failed to read back post id: %v", err)
	}
	return id
}

func TestInsertPostIdempotent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	post := &models.Post{Source: "devto", SourceURL: "https://dev.to/a", Title: "First"}
	inserted, err := c.InsertPost(ctx, post)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if !inserted {
		t.Fatal("first insert reported no row written")
	}

	again := &models.Post{Source: "devto", SourceURL: "https://dev.to/a", Title: "Second"}
	inserted, err = c.InsertPost(ctx, again)
	if err != nil {
		t.Fatalf("conflicting insert failed: %v", err)
	}
	if inserted {
		t.Error("conflicting insert reported a row written")
	}

	count, err := c.CountPosts(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	got, err := c.GetPost(ctx, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Title != "First" {
		t.Errorf("title = %q, the first write must win", got.Title)
	}
}

func TestPostExists(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	insertTestPost(t, c, "https://dev.to/known")

	exists, err := c.PostExists(ctx, "https://dev.to/known")
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if !exists {
		t.Error("stored post reported absent")
	}

	exists, err = c.PostExists(ctx, "https://dev.to/unknown")
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Error("missing post reported present")
	}
}

func TestGetPostMissing(t *testing.T) {
	c := newTestClient(t)

	post, err := c.GetPost(context.Background(), 42)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if post != nil {
		t.Errorf("got %+v, want nil for a missing post", post)
	}
}

func TestPostRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	original := &models.Post{
		Source:        "github",
		SourceURL:     "https://github.com/a/b",
		Title:         "repo",
		Tags:          models.StringSlice{"pycon", "python"},
		ExtraMetadata: models.JSONMap{"stars": float64(7)},
	}
	if _, err := c.InsertPost(ctx, original); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := c.GetPost(ctx, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "pycon" {
		t.Errorf("tags = %v, want round-tripped", got.Tags)
	}
	if got.ExtraMetadata["stars"] != float64(7) {
		t.Errorf("metadata = %v, want stars preserved", got.ExtraMetadata)
	}
	if got.Analyzed {
		t.Error("new post must start unanalyzed")
	}
}

func TestSaveAnalysis(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id := insertTestPost(t, c, "https://dev.to/a")

	result := models.SentimentResult{
		Sentiment:     "positive",
		Confidence:    0.7,
		PositiveScore: 0.7,
		NegativeScore: 0.2,
		NeutralScore:  0.1,
	}
	topics := []models.Topic{{Topic: "async", RelevanceScore: 0.8}}
	entities := []models.Entity{{EntityType: "mention", EntityName: "Guido", MentionCount: 1}}

	if err := c.SaveAnalysis(ctx, id, result, topics, entities); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	post, err := c.GetPost(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !post.Analyzed {
		t.Error("post not marked analyzed")
	}

	analyzed, err := c.CountAnalyzedPosts(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if analyzed != 1 {
		t.Errorf("analyzed count = %d, want 1", analyzed)
	}

	pending, err := c.ListPendingPosts(ctx, 10)
	if err != nil {
		t.Fatalf("pending list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d posts, want none", len(pending))
	}
}

func TestDeletePostCascades(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	id := insertTestPost(t, c, "https://dev.to/a")
	err := c.SaveAnalysis(ctx, id,
		models.SentimentResult{Sentiment: "neutral", Confidence: 0.6, PositiveScore: 0.3, NegativeScore: 0.3, NeutralScore: 0.4},
		[]models.Topic{{Topic: "python", RelevanceScore: 0.8}},
		[]models.Entity{{EntityType: "mention", EntityName: "PyCon", MentionCount: 1}},
	)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := c.db.Exec("DELETE FROM posts WHERE id = ?", id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, table := range []string{"sentiment_analysis", "topics", "entities"} {
		var count int
		if err := c.db.Get(&count, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if count != 0 {
			t.Errorf("%s still has %d rows after post delete", table, count)
		}
	}
}

func TestSentimentStats(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	templates := map[string]models.SentimentResult{
		"https://dev.to/pos1": {Sentiment: "positive", Confidence: 0.7, PositiveScore: 0.7, NegativeScore: 0.2, NeutralScore: 0.1},
		"https://dev.to/pos2": {Sentiment: "positive", Confidence: 0.7, PositiveScore: 0.7, NegativeScore: 0.2, NeutralScore: 0.1},
		"https://dev.to/neg":  {Sentiment: "negative", Confidence: 0.7, PositiveScore: 0.2, NegativeScore: 0.7, NeutralScore: 0.1},
		"https://dev.to/neu":  {Sentiment: "neutral", Confidence: 0.6, PositiveScore: 0.3, NegativeScore: 0.3, NeutralScore: 0.4},
	}
	for url, result := range templates {
		id := insertTestPost(t, c, url)
		if err := c.SaveAnalysis(ctx, id, result, nil, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	insertTestPost(t, c, "https://dev.to/pending")

	stats, err := c.SentimentStats(ctx, 0)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	if stats.TotalPosts != 5 {
		t.Errorf("total = %d, want 5", stats.TotalPosts)
	}
	if stats.AnalyzedPosts != 4 {
		t.Errorf("analyzed = %d, want 4", stats.AnalyzedPosts)
	}
	if stats.Positive != 2 || stats.Negative != 1 || stats.Neutral != 1 {
		t.Errorf("labels = (%d, %d, %d), want (2, 1, 1)", stats.Positive, stats.Negative, stats.Neutral)
	}

	// (0.5 + 0.5 - 0.5 + 0.0) / 4
	want := 0.125
	if math.Abs(stats.AverageSentiment-want) > 1e-9 {
		t.Errorf("average = %v, want %v", stats.AverageSentiment, want)
	}
}

func TestSentimentStatsEmpty(t *testing.T) {
	c := newTestClient(t)

	stats, err := c.SentimentStats(context.Background(), 0)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalPosts != 0 || stats.AnalyzedPosts != 0 {
		t.Errorf("counts = (%d, %d), want zeros", stats.TotalPosts, stats.AnalyzedPosts)
	}
	if stats.AverageSentiment != 0.0 {
		t.Errorf("average = %v, want 0.0 with nothing analyzed", stats.AverageSentiment)
	}
}

func TestTrendingTopics(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	neutral := models.SentimentResult{Sentiment: "neutral", Confidence: 0.6, PositiveScore: 0.3, NegativeScore: 0.3, NeutralScore: 0.4}

	id1 := insertTestPost(t, c, "https://dev.to/a")
	id2 := insertTestPost(t, c, "https://dev.to/b")
	id3 := insertTestPost(t, c, "https://dev.to/c")

	for _, pair := range []struct {
		id     int64
		topics []models.Topic
	}{
		{id1, []models.Topic{{Topic: "async", RelevanceScore: 0.8}, {Topic: "python", RelevanceScore: 0.8}}},
		{id2, []models.Topic{{Topic: "async", RelevanceScore: 0.8}}},
		{id3, []models.Topic{{Topic: "testing", RelevanceScore: 0.8}}},
	} {
		if err := c.SaveAnalysis(ctx, pair.id, neutral, pair.topics, nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	topics, err := c.TrendingTopics(ctx, 10, 0)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("got %d topics, want 3", len(topics))
	}
	if topics[0].Topic != "async" || topics[0].Count != 2 {
		t.Errorf("top topic = %+v, want async with count 2", topics[0])
	}
}

func TestTrendingEntities(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	neutral := models.SentimentResult{Sentiment: "neutral", Confidence: 0.6, PositiveScore: 0.3, NegativeScore: 0.3, NeutralScore: 0.4}

	id1 := insertTestPost(t, c, "https://dev.to/a")
	id2 := insertTestPost(t, c, "https://dev.to/b")

	err := c.SaveAnalysis(ctx, id1, neutral, nil, []models.Entity{
		{EntityType: "mention", EntityName: "Guido", MentionCount: 2},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	err = c.SaveAnalysis(ctx, id2, neutral, nil, []models.Entity{
		{EntityType: "mention", EntityName: "Guido", MentionCount: 1},
		{EntityType: "mention", EntityName: "PyCon", MentionCount: 1},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entities, err := c.TrendingEntities(ctx, 10, "", 0)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(entities))
	}
	if entities[0].EntityName != "Guido" || entities[0].Mentions != 3 {
		t.Errorf("top entity = %+v, want Guido with 3 mentions", entities[0])
	}

	filtered, err := c.TrendingEntities(ctx, 10, "person", 0)
	if err != nil {
		t.Fatalf("filtered trending failed: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("got %d entities for unused type, want none", len(filtered))
	}
}

func TestCollectionLogs(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	for _, log := range []models.CollectionLog{
		{RunID: "run-1", Source: "devto", PostsFound: 3, PostsNew: 2, Status: "success"},
		{RunID: "run-1", Source: "medium", Status: "error", ErrorMessage: "feed down"},
	} {
		log := log
		if err := c.InsertCollectionLog(ctx, &log); err != nil {
			t.Fatalf("insert log failed: %v", err)
		}
	}

	logs, err := c.RecentCollectionLogs(ctx, 10)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	for _, log := range logs {
		if log.RunID != "run-1" {
			t.Errorf("run id = %q, want run-1", log.RunID)
		}
	}
}
