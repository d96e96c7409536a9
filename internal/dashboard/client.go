package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

const clientTimeout = 10 * time.Second

// APIClient reads aggregates from the API service. Every method degrades
// to zero values on failure so the dashboard always renders.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

func (c *APIClient) SentimentStats(ctx context.Context) (*models.SentimentStats, error) {
	var stats models.SentimentStats
	if err := c.getJSON(ctx, "/api/v1/sentiment/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *APIClient) TrendingTopics(ctx context.Context, limit int) ([]models.TopicCount, error) {
	var resp struct {
		Topics []models.TopicCount `json:"topics"`
	}
	path := fmt.Sprintf("/api/v1/topics/trending?limit=%d", limit)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

func (c *APIClient) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var resp struct {
		Posts []models.Post `json:"posts"`
	}
	path := fmt.Sprintf("/api/v1/posts?limit=%d", limit)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode api response: %w", err)
	}
	return nil
}
