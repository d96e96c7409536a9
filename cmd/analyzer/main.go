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

	"github.com/community-pulse/backend/internal/analysis"
	"github.com/community-pulse/backend/internal/api/handlers"
	"github.com/community-pulse/backend/internal/cache/redis"
	"github.com/community-pulse/backend/internal/llm"
	"github.com/community-pulse/backend/internal/metrics"
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

	appLogger.Info("Starting Community Pulse Analyzer")

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

	var classifier analysis.Classifier
	if cfg.LLM.APIKey != "" {
		classifier = llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.Model,
			cfg.LLM.Temperature,
			cfg.LLM.MaxTokens,
			cfg.LLM.TimeoutSec,
		)
	} else {
		appLogger.Info("No LLM API key configured, using rule-based classification only")
	}

	analyzer := analysis.NewAnalyzer(storeClient, classifier)

	cacheClient, err := redis.NewClient(
		cfg.Redis.Addr,
		cfg.Redis.Password,
		cfg.Redis.DB,
		time.Duration(cfg.Redis.TTLSec)*time.Second,
	)
	if err != nil {
		appLogger.Warn("Redis unavailable, cache invalidation disabled", zap.Error(err))
	}
	if cacheClient != nil {
		analyzer.WithCache(cacheClient)
		defer cacheClient.Close()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	analyzeHandler := handlers.NewAnalyzeHandler(analyzer)

	app.Post("/analyze/pending", analyzeHandler.AnalyzePending)
	app.Post("/analyze/:post_id", analyzeHandler.AnalyzePost)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Analyzer.Port)
	appLogger.Info("Analyzer starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Analyzer failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Analyzer shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Analyzer stopped")
}
