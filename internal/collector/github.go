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

const githubDefaultBaseURL = "https://api.github.com"

const githubMaxResults = 5

// GitHubCollector searches public repositories. A token raises the rate
// limit but is optional.
type GitHubCollector struct {
	baseURL    string
	token      string
	query      string
	maxPosts   int
	httpClient *http.Client
}

func NewGitHub(token string, keywords []string, maxPosts int) *GitHubCollector {
	return &GitHubCollector{
		baseURL:    githubDefaultBaseURL,
		token:      token,
		query:      searchQuery(keywords),
		maxPosts:   maxPosts,
		httpClient: newHTTPClient(),
	}
}

func (c *GitHubCollector) Source() string { return "github" }

type githubSearchResponse struct {
	Items []struct {
		Name            string   `json:"name"`
		HTMLURL         string   `json:"html_url"`
		Description     string   `json:"description"`
		CreatedAt       string   `json:"created_at"`
		Topics          []string `json:"topics"`
		StargazersCount int      `json:"stargazers_count"`
		ForksCount      int      `json:"forks_count"`
		Owner           struct {
			Login   string `json:"login"`
			HTMLURL string `json:"html_url"`
		} `json:"owner"`
	} `json:"items"`
}

func (c *GitHubCollector) Collect(ctx context.Context) ([]models.Post, error) {
	perPage := githubMaxResults
	if c.maxPosts < perPage {
		perPage = c.maxPosts
	}

	params := url.Values{}
	params.Set("q", c.query)
	params.Set("sort", "updated")
	params.Set("per_page", fmt.Sprintf("%d", perPage))

	searchURL := fmt.Sprintf("%s/search/repositories?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search repositories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned status %d", resp.StatusCode)
	}

	var search githubSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	posts := make([]models.Post, 0, len(search.Items))
	for _, repo := range search.Items {
		description := repo.Description
		if description == "" {
			description = "No description"
		}

		var publishedAt *time.Time
		if t, err := time.Parse(time.RFC3339, repo.CreatedAt); err == nil {
			publishedAt = &t
		}

		tags := repo.Topics
		if len(tags) > maxFeedTags {
			tags = tags[:maxFeedTags]
		}

		posts = append(posts, models.Post{
			Source:      c.Source(),
			SourceURL:   repo.HTMLURL,
			Title:       repo.Name,
			Content:     normalizeContent(description),
			AuthorName:  repo.Owner.Login,
			AuthorURL:   repo.Owner.HTMLURL,
			PublishedAt: publishedAt,
			Tags:        tags,
			ExtraMetadata: models.JSONMap{
				"stars": repo.StargazersCount,
				"forks": repo.ForksCount,
			},
		})
	}

	return posts, nil
}
