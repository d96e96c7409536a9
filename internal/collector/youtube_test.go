package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYouTubeCollectWithoutKey(t *testing.T) {
	c := NewYouTube("", []string{"PyCon"}, 20)

	posts, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("got %d posts, want none without an API key", len(posts))
	}
}

func TestYouTubeCollect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("q"); got != "PyCon 2025" {
			t.Errorf("q = %q, want the longest keyword", got)
		}
		if got := q.Get("maxResults"); got != "5" {
			t.Errorf("maxResults = %q, want 5", got)
		}
		fmt.Fprint(w, `{
			"items": [
				{
					"id": {"videoId": "abc123"},
					"snippet": {
						"title": "PyCon 2025 Keynote",
						"description": "Opening keynote",
						"channelTitle": "PyCon",
						"channelId": "chan1",
						"publishedAt": "2025-05-16T09:00:00Z"
					}
				}
			]
		}`)
	}))
	defer server.Close()

	c := NewYouTube("test-key", []string{"PyCon", "PyCon 2025"}, 20)
	c.baseURL = server.URL

	posts, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}

	post := posts[0]
	if post.Source != "youtube" {
		t.Errorf("source = %q, want youtube", post.Source)
	}
	if post.SourceURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("source url = %q", post.SourceURL)
	}
	if post.AuthorName != "PyCon" {
		t.Errorf("author = %q, want PyCon", post.AuthorName)
	}
	if post.PublishedAt == nil {
		t.Error("published_at not parsed")
	}
}

func TestYouTubeCollectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewYouTube("test-key", []string{"PyCon"}, 20)
	c.baseURL = server.URL

	if _, err := c.Collect(context.Background()); err == nil {
		t.Fatal("expected an error on 403")
	}
}
