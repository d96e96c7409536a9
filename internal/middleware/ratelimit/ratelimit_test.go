package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestLimiterBlocksAfterBudget(t *testing.T) {
	l := New(Config{RequestsPerMinute: 3})
	defer l.Stop()

	app := fiber.New()
	app.Use(l.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 once the budget is spent", resp.StatusCode)
	}
}

func TestLimiterDefaults(t *testing.T) {
	l := New(Config{})
	defer l.Stop()

	if l.maxTokens != 120 {
		t.Errorf("maxTokens = %d, want the default budget", l.maxTokens)
	}
}
