package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/community-pulse/backend/internal/storage/models"
)

type stubCollector struct {
	source string
	posts  []models.Post
	err    error
}

func (s stubCollector) Source() string { return s.source }

func (s stubCollector) Collect(context.Context) ([]models.Post, error) {
	return s.posts, s.err
}

type recordingIngester struct {
	batches map[string][]models.Post
	runIDs  []string
}

func newRecordingIngester() *recordingIngester {
	return &recordingIngester{batches: make(map[string][]models.Post)}
}

func (r *recordingIngester) IngestBatch(_ context.Context, source, runID string, posts []models.Post) (int, int, error) {
	r.batches[source] = posts
	r.runIDs = append(r.runIDs, runID)
	return len(posts), len(posts), nil
}

func TestRunnerRun(t *testing.T) {
	ingester := newRecordingIngester()
	runner := NewRunner(ingester,
		stubCollector{source: "devto", posts: []models.Post{{SourceURL: "a"}, {SourceURL: "b"}}},
		stubCollector{source: "medium", err: errors.New("feed down")},
		stubCollector{source: "youtube"},
	)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if got := len(ingester.batches["devto"]); got != 2 {
		t.Errorf("devto batch = %d posts, want 2", got)
	}

	// A failed source still produces a (zero-post) batch so the run is
	// logged for it.
	if _, ok := ingester.batches["medium"]; !ok {
		t.Error("failed source was never handed to ingestion")
	}
	if got := len(ingester.batches["medium"]); got != 0 {
		t.Errorf("medium batch = %d posts, want 0", got)
	}

	if len(ingester.runIDs) != 3 {
		t.Fatalf("got %d ingest calls, want 3", len(ingester.runIDs))
	}
	for _, id := range ingester.runIDs[1:] {
		if id != ingester.runIDs[0] {
			t.Errorf("run ids differ within one run: %v", ingester.runIDs)
		}
	}
	if ingester.runIDs[0] == "" {
		t.Error("run id is empty")
	}
}
