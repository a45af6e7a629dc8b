package main

import (
	"context"
	"log"
	"site-functions/internal/bootstrap"
	"site-functions/internal/config"
	"site-functions/internal/observability"
	"site-functions/internal/server"
)

func main() {
	logger := observability.NewLogger()
	defer logger.Sync()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize dependencies", err)
	}

	srv := server.New(cfg, deps, logger)
	srv.Setup()

	if cfg.Scheduler.Enabled {
		if err := srv.EnableScheduler(); err != nil {
			logger.Fatal(ctx, "failed to register scheduled jobs", err)
		}
	}

	if err := srv.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start server", err)
	}

	if err := srv.WaitForShutdown(ctx); err != nil {
		logger.Fatal(ctx, "server shutdown failed", err)
	}
}
