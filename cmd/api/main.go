package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/api/handlers"
	"github.com/community-pulse/backend/internal/cache/redis"
	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/internal/middleware/ratelimit"
	"github.com/community-pulse/backend/internal/storage/store"
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

	appLogger.Info("Starting Community Pulse API Server")

	metrics.Init()

	storeClient, err := store.NewClient(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		appLogger.Fatal("Failed to create storage client", zap.Error(err))
	}
	defer storeClient.Close()

	err = storeClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	cacheClient, err := redis.NewClient(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		time.Duration(cfg.Redis.TTLSec)*time.Second,
	)
	if err != nil {
		appLogger.Warn("Redis unavailable, stats caching disabled", zap.Error(err))
	}
	defer cacheClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
		Logger:            appLogger.GetLogger(),
	})
	defer limiter.Stop()

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.Origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(limiter.Middleware())

	postsHandler := handlers.NewPostsHandler(storeClient)
	statsHandler := handlers.NewStatsHandler(
		storeClient,
		cacheClient,
		cfg.Analyzer.URL,
		cfg.Analyzer.PendingThreshold,
		cfg.Analyzer.PendingBatch,
	)

	api := app.Group("/api/v1")

	api.Get("/posts", postsHandler.GetPosts)
	api.Get("/posts/:id", postsHandler.GetPost)

	api.Get("/sentiment/stats", statsHandler.GetSentimentStats)
	api.Get("/topics/trending", statsHandler.GetTrendingTopics)
	api.Get("/trending/entities", statsHandler.GetTrendingEntities)
	api.Get("/stats", statsHandler.GetStats)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
