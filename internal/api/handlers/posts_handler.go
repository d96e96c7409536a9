package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/storage/models"
	"github.com/community-pulse/backend/pkg/logger"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

// PostsStore is the read-side slice of the storage client for post listing.
type PostsStore interface {
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
}

type PostsHandler struct {
	store PostsStore
}

func NewPostsHandler(store PostsStore) *PostsHandler {
	return &PostsHandler{store: store}
}

// GetPosts handles GET /posts?limit=
func (h *PostsHandler) GetPosts(c *fiber.Ctx) error {
	limit := clampLimit(c.QueryInt("limit", defaultPostLimit), defaultPostLimit, maxPostLimit)

	posts, err := h.store.ListPosts(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to list posts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list posts",
		})
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"count": len(posts),
	})
}

// GetPost handles GET /posts/:id
func (h *PostsHandler) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.store.GetPost(c.Context(), int64(id))
	if err != nil {
		logger.Error("Failed to get post", zap.Int("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get post",
		})
	}
	if post == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}

	return c.JSON(post)
}

// clampLimit keeps a client-supplied limit inside (0, max].
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
