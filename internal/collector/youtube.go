package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

const youtubeDefaultBaseURL = "https://www.googleapis.com"

const youtubeMaxResults = 5

// YouTubeCollector searches for videos matching the configured keywords.
// Without an API key it returns no posts, which is not an error.
type YouTubeCollector struct {
	baseURL    string
	apiKey     string
	query      string
	maxPosts   int
	httpClient *http.Client
}

func NewYouTube(apiKey string, keywords []string, maxPosts int) *YouTubeCollector {
	return &YouTubeCollector{
		baseURL:    youtubeDefaultBaseURL,
		apiKey:     apiKey,
		query:      searchQuery(keywords),
		maxPosts:   maxPosts,
		httpClient: newHTTPClient(),
	}
}

func (c *YouTubeCollector) Source() string { return "youtube" }

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			ChannelID    string `json:"channelId"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *YouTubeCollector) Collect(ctx context.Context) ([]models.Post, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	maxResults := youtubeMaxResults
	if c.maxPosts < maxResults {
		maxResults = c.maxPosts
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", c.query)
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("key", c.apiKey)

	searchURL := fmt.Sprintf("%s/youtube/v3/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube returned status %d", resp.StatusCode)
	}

	var search youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	posts := make([]models.Post, 0, len(search.Items))
	for _, video := range search.Items {
		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			publishedAt = &t
		}

		posts = append(posts, models.Post{
			Source:        c.Source(),
			SourceURL:     fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.ID.VideoID),
			Title:         video.Snippet.Title,
			Content:       normalizeContent(video.Snippet.Description),
			AuthorName:    video.Snippet.ChannelTitle,
			AuthorURL:     fmt.Sprintf("https://www.youtube.com/channel/%s", video.Snippet.ChannelID),
			PublishedAt:   publishedAt,
			Tags:          nil,
			ExtraMetadata: models.JSONMap{},
		})
	}

	return posts, nil
}
