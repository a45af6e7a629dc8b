package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"site-functions/internal/bootstrap"
	"site-functions/internal/config"
	"site-functions/internal/jobs/scheduler"
	"site-functions/internal/jobs/scheduler/jobs"
	"site-functions/internal/observability"
	"syscall"
)

func main() {
	logger := observability.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting newsletter worker...")

	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize dependencies", err)
	}
	defer deps.Cleanup()

	s := scheduler.New(logger)
	job := jobs.NewNewsletterDispatchJob(&deps.Newsletter, logger, cfg.Scheduler.NewsletterSchedule)
	if err := s.Register(job, false); err != nil {
		logger.Fatal(ctx, "failed to register newsletter job", err)
	}

	// Blocks until SIGINT/SIGTERM; an in-flight dispatch is allowed to finish
	_ = s.Start(ctx)
	logger.Info(context.Background(), "Worker stopped")
}
