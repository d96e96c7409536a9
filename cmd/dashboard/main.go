package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/dashboard"
	"github.com/community-pulse/backend/internal/middleware/security"
	"github.com/community-pulse/backend/pkg/config"
	appLogger "github.com/community-pulse/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Community Pulse Dashboard")

	apiClient := dashboard.NewAPIClient(cfg.Dashboard.APIURL)

	handler, err := dashboard.NewHandler(apiClient, cfg.Dashboard.TemplatePath)
	if err != nil {
		appLogger.Fatal("Failed to load dashboard template", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(security.Headers(security.HeadersConfig{
		APIOrigin:     cfg.Dashboard.APIURL,
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	app.Get("/", handler.Index)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Dashboard.Port)
	appLogger.Info("Dashboard starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Dashboard failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Dashboard shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Dashboard stopped")
}
