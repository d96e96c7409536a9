package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/community-pulse/backend/internal/storage/models"
)

const devtoDefaultBaseURL = "https://dev.to"

// DevToCollector fetches tag-filtered articles from the Dev.to public API.
type DevToCollector struct {
	baseURL    string
	tag        string
	maxPosts   int
	httpClient *http.Client
}

func NewDevTo(tag string, maxPosts int) *DevToCollector {
	return &DevToCollector{
		baseURL:    devtoDefaultBaseURL,
		tag:        tag,
		maxPosts:   maxPosts,
		httpClient: newHTTPClient(),
	}
}

func (c *DevToCollector) Source() string { return "devto" }

type devtoArticle struct {
	URL                    string   `json:"url"`
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	PublishedAt            string   `json:"published_at"`
	TagList                []string `json:"tag_list"`
	PositiveReactionsCount int      `json:"positive_reactions_count"`
	CommentsCount          int      `json:"comments_count"`
	User                   struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
}

func (c *DevToCollector) Collect(ctx context.Context) ([]models.Post, error) {
	url := fmt.Sprintf("%s/api/articles?tag=%s&per_page=%d", c.baseURL, c.tag, c.maxPosts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dev.to returned status %d", resp.StatusCode)
	}

	var articles []devtoArticle
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("failed to parse articles: %w", err)
	}

	if len(articles) > c.maxPosts {
		articles = articles[:c.maxPosts]
	}

	posts := make([]models.Post, 0, len(articles))
	for _, a := range articles {
		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			publishedAt = &t
		}

		posts = append(posts, models.Post{
			Source:      c.Source(),
			SourceURL:   a.URL,
			Title:       a.Title,
			Content:     normalizeContent(a.Description),
			AuthorName:  a.User.Name,
			AuthorURL:   fmt.Sprintf("https://dev.to/%s", a.User.Username),
			PublishedAt: publishedAt,
			Tags:        a.TagList,
			ExtraMetadata: models.JSONMap{
				"positive_reactions_count": a.PositiveReactionsCount,
				"comments_count":           a.CommentsCount,
			},
		})
	}

	return posts, nil
}
