package dashboard

import (
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/logger"
)

const (
	topicLimit      = 10
	recentPostLimit = 10
)

type Handler struct {
	client *APIClient
	tmpl   *template.Template
}

// pageData feeds the dashboard template. Fields stay at their zero values
// when the API is unreachable so the page still renders.
type pageData struct {
	Stats       models.SentimentStats
	Topics      []models.TopicCount
	Posts       []models.Post
	APIDegraded bool
}

func NewHandler(client *APIClient, templatePath string) (*Handler, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, err
	}
	return &Handler{client: client, tmpl: tmpl}, nil
}

// Index handles GET / and renders the overview page.
func (h *Handler) Index(c *fiber.Ctx) error {
	ctx := c.Context()
	data := pageData{}

	stats, err := h.client.SentimentStats(ctx)
	if err != nil {
		logger.Warn("Dashboard: sentiment stats unavailable", zap.Error(err))
		data.APIDegraded = true
	} else {
		data.Stats = *stats
	}

	topics, err := h.client.TrendingTopics(ctx, topicLimit)
	if err != nil {
		logger.Warn("Dashboard: trending topics unavailable", zap.Error(err))
		data.APIDegraded = true
	} else {
		data.Topics = topics
	}

	posts, err := h.client.RecentPosts(ctx, recentPostLimit)
	if err != nil {
		logger.Warn("Dashboard: recent posts unavailable", zap.Error(err))
		data.APIDegraded = true
	} else {
		data.Posts = posts
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return h.tmpl.Execute(c.Response().BodyWriter(), data)
}
