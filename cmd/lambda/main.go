package main

import (
	"context"
	"log"
	"site-functions/internal/apierrors"
	"site-functions/internal/bootstrap"
	"site-functions/internal/config"
	"site-functions/internal/newsletter/processor"
	"site-functions/internal/observability"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// Runner is the dispatch pipeline one invocation drives
type Runner interface {
	Run(ctx context.Context, now time.Time) (processor.Result, error)
}

// Response is what an invocation returns to the scheduler
type Response struct {
	State      string            `json:"state"`
	Newsletter string            `json:"newsletter,omitempty"`
	Report     *processor.Report `json:"report,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// newHandler returns the invocation handler. Pipeline failures are reported in the
// Response rather than returned: an error return would make Lambda retry the send.
func newHandler(runner Runner, logger *observability.Logger, now func() time.Time) func(context.Context, events.CloudWatchEvent) (Response, error) {
	return func(ctx context.Context, event events.CloudWatchEvent) (Response, error) {
		ctx = observability.WithFields(ctx,
			observability.Field{Key: "event_id", Value: event.ID},
			observability.Field{Key: "event_source", Value: event.Source},
		)

		result, err := runner.Run(ctx, now())
		if err != nil {
			logger.Error(ctx, "scheduled newsletter run failed", err)
			return Response{State: "ERROR", Error: apierrors.MapError(err).Message}, nil
		}

		resp := Response{State: string(result.State), Newsletter: result.NewsletterID}
		if result.State == processor.StateReport {
			report := result.Report
			resp.Report = &report
		}
		return resp, nil
	}
}

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

	lambda.Start(newHandler(&deps.Newsletter, logger, time.Now))
}
