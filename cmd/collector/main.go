package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/community-pulse/backend/internal/collector"
	"github.com/community-pulse/backend/internal/ingestion"
	"github.com/community-pulse/backend/internal/metrics"
	"github.com/community-pulse/backend/internal/scheduler"
	"github.com/community-pulse/backend/internal/storage/store"
	"github.com/community-pulse/backend/pkg/config"
	appLogger "github.com/community-pulse/backend/pkg/logger"
)

func main() {
	once := flag.Bool("once", false, "run one collection cycle and exit")
	flag.Parse()

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

	appLogger.Info("Starting Community Pulse Collector")

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

	ingester := ingestion.NewIngester(storeClient)

	runner := collector.NewRunner(ingester,
		collector.NewDevTo(cfg.Collect.Tag, cfg.Collect.MaxPerSource),
		collector.NewMedium(cfg.Collect.Tag, cfg.Collect.MaxPerSource),
		collector.NewYouTube(cfg.Collect.YouTubeAPIKey, cfg.Collect.Keywords, cfg.Collect.MaxPerSource),
		collector.NewGitHub(cfg.Collect.GitHubToken, cfg.Collect.Keywords, cfg.Collect.MaxPerSource),
	)

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := runner.Run(ctx); err != nil {
			appLogger.Fatal("Collection run failed", zap.Error(err))
		}
		appLogger.Info("Collection run complete")
		return
	}

	sched := scheduler.New()
	err = sched.AddIntervalJob("collect", cfg.Collect.IntervalMinutes, runner.Run)
	if err != nil {
		appLogger.Fatal("Failed to schedule collection job", zap.Error(err))
	}
	sched.Start()

	appLogger.Info("Collector scheduled",
		zap.Int("interval_minutes", cfg.Collect.IntervalMinutes),
	)

	// Kick off one cycle immediately so a fresh deployment has data before
	// the first tick.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := runner.Run(ctx); err != nil {
			appLogger.Error("Initial collection run failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Collector shutting down gracefully...")
	<-sched.Stop().Done()
	appLogger.Info("Collector stopped")
}
