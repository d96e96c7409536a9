package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/community-pulse/backend/internal/storage/models"
)

// fakeStore splits "was there before the batch" from "written during the
// batch" so the lost-race insert path is reachable.
type fakeStore struct {
	existing map[string]bool
	inserted map[string]bool
	logs     []models.CollectionLog

	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		existing: make(map[string]bool),
		inserted: make(map[string]bool),
	}
}

func (s *fakeStore) PostExists(_ context.Context, sourceURL string) (bool, error) {
	return s.existing[sourceURL], nil
}

func (s *fakeStore) InsertPost(_ context.Context, post *models.Post) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if s.inserted[post.SourceURL] {
		return false, nil
	}
	s.inserted[post.SourceURL] = true
	return true, nil
}

func (s *fakeStore) InsertCollectionLog(_ context.Context, log *models.CollectionLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

func TestIngestBatch(t *testing.T) {
	store := newFakeStore()
	store.existing["https://dev.to/old"] = true

	ing := NewIngester(store)

	posts := []models.Post{
		{SourceURL: "https://dev.to/old", Title: "seen before"},
		{SourceURL: "https://dev.to/new", Title: "fresh"},
		{SourceURL: "https://dev.to/other", Title: "also fresh"},
	}

	found, created, err := ing.IngestBatch(context.Background(), "devto", "run-1", posts)
	if err != nil {
		t.Fatalf("IngestBatch returned error: %v", err)
	}
	if found != 3 {
		t.Errorf("found = %d, want 3", found)
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}

	if len(store.logs) != 1 {
		t.Fatalf("got %d log rows, want 1", len(store.logs))
	}
	log := store.logs[0]
	if log.Status != "success" {
		t.Errorf("status = %q, want success", log.Status)
	}
	if log.RunID != "run-1" {
		t.Errorf("run id = %q, want run-1", log.RunID)
	}
	if log.PostsFound != 3 || log.PostsNew != 2 {
		t.Errorf("log counts = (%d, %d), want (3, 2)", log.PostsFound, log.PostsNew)
	}
}

func TestIngestBatchEmpty(t *testing.T) {
	store := newFakeStore()
	ing := NewIngester(store)

	found, created, err := ing.IngestBatch(context.Background(), "youtube", "run-2", nil)
	if err != nil {
		t.Fatalf("IngestBatch returned error: %v", err)
	}
	if found != 0 || created != 0 {
		t.Errorf("counts = (%d, %d), want (0, 0)", found, created)
	}

	// Even a sourceless run gets its log row.
	if len(store.logs) != 1 {
		t.Fatalf("got %d log rows, want 1", len(store.logs))
	}
	if store.logs[0].Status != "success" {
		t.Errorf("status = %q, want success", store.logs[0].Status)
	}
}

func TestIngestBatchInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")

	ing := NewIngester(store)

	posts := []models.Post{{SourceURL: "https://dev.to/a"}}

	_, _, err := ing.IngestBatch(context.Background(), "devto", "run-3", posts)
	if err == nil {
		t.Fatal("expected the insert failure to surface")
	}

	if len(store.logs) != 1 {
		t.Fatalf("got %d log rows, want 1", len(store.logs))
	}
	log := store.logs[0]
	if log.Status != "error" {
		t.Errorf("status = %q, want error", log.Status)
	}
	if log.ErrorMessage != "disk full" {
		t.Errorf("error message = %q, want cause recorded", log.ErrorMessage)
	}
}

func TestIngestBatchLostRace(t *testing.T) {
	store := newFakeStore()
	ing := NewIngester(store)

	// Same URL twice in one batch: the second insert reports no row
	// written, which counts as a duplicate rather than a failure.
	posts := []models.Post{
		{SourceURL: "https://dev.to/dup"},
		{SourceURL: "https://dev.to/dup"},
	}

	found, created, err := ing.IngestBatch(context.Background(), "devto", "run-4", posts)
	if err != nil {
		t.Fatalf("IngestBatch returned error: %v", err)
	}
	if found != 2 || created != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", found, created)
	}
}
