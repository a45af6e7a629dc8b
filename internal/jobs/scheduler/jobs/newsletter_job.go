package jobs

import (
	"context"
	"fmt"
	"site-functions/internal/newsletter/processor"
	"site-functions/internal/observability"
	"time"
)

// NewsletterRunner is the dispatch pipeline a tick drives
type NewsletterRunner interface {
	Run(ctx context.Context, now time.Time) (processor.Result, error)
}

// NewsletterDispatchJob sends the next due newsletter on each tick
type NewsletterDispatchJob struct {
	runner   NewsletterRunner
	logger   *observability.Logger
	schedule string
	now      func() time.Time
}

// NewNewsletterDispatchJob creates a new newsletter dispatch job
func NewNewsletterDispatchJob(runner NewsletterRunner, logger *observability.Logger, schedule string) *NewsletterDispatchJob {
	if schedule == "" {
		schedule = "0 * * * *" // Default to hourly
	}

	return &NewsletterDispatchJob{
		runner:   runner,
		logger:   logger,
		schedule: schedule,
		now:      time.Now,
	}
}

// Name returns the job name
func (j *NewsletterDispatchJob) Name() string {
	return "newsletter_dispatch"
}

// Schedule returns the cron expression the job runs on
func (j *NewsletterDispatchJob) Schedule() string {
	return j.schedule
}

// Run executes one dispatch tick
func (j *NewsletterDispatchJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx, j.now())
	if err != nil {
		return fmt.Errorf("newsletter dispatch: %w", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "state", Value: result.State},
		observability.Field{Key: "newsletter_id", Value: result.NewsletterID},
	)
	j.logger.Info(ctx, "Newsletter tick finished")
	return nil
}
