package collector

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/community-pulse/backend/internal/storage/models"
)

const mediumDefaultBaseURL = "https://medium.com"

const maxFeedTags = 5

// MediumCollector reads the Medium tag feed. Entries without a parseable
// published date are kept with a nil timestamp.
type MediumCollector struct {
	baseURL  string
	tag      string
	maxPosts int
	parser   *gofeed.Parser
}

func NewMedium(tag string, maxPosts int) *MediumCollector {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient()

	return &MediumCollector{
		baseURL:  mediumDefaultBaseURL,
		tag:      tag,
		maxPosts: maxPosts,
		parser:   parser,
	}
}

func (c *MediumCollector) Source() string { return "medium" }

func (c *MediumCollector) Collect(ctx context.Context) ([]models.Post, error) {
	feedURL := fmt.Sprintf("%s/feed/tag/%s", c.baseURL, c.tag)

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > c.maxPosts {
		items = items[:c.maxPosts]
	}

	posts := make([]models.Post, 0, len(items))
	for _, item := range items {
		tags := item.Categories
		if len(tags) > maxFeedTags {
			tags = tags[:maxFeedTags]
		}

		authorName := "Unknown"
		if item.Author != nil && item.Author.Name != "" {
			authorName = item.Author.Name
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}

		posts = append(posts, models.Post{
			Source:        c.Source(),
			SourceURL:     item.Link,
			Title:         item.Title,
			Content:       normalizeContent(content),
			AuthorName:    authorName,
			PublishedAt:   item.PublishedParsed,
			Tags:          tags,
			ExtraMetadata: models.JSONMap{},
		})
	}

	return posts, nil
}
