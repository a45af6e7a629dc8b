package scheduler

import (
	"context"
	"fmt"
	"site-functions/internal/observability"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job interface {
	// Name returns the job name for logging
	Name() string
	// Run executes the job
	Run(ctx context.Context) error
	// Schedule returns a standard five-field cron expression
	Schedule() string
}

// Scheduler runs registered jobs on their cron schedules. A job never overlaps itself:
// a tick that arrives while the previous run is still going is skipped.
type Scheduler struct {
	cron       *cron.Cron
	parser     cron.Parser
	runOnStart []cron.Job
	logger     *observability.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	startup    sync.WaitGroup
}

// New creates a new scheduler
func New(logger *observability.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds a job to the scheduler. With runOnStart the job also runs once when Start is called.
func (s *Scheduler) Register(job Job, runOnStart bool) error {
	schedule, err := s.parser.Parse(job.Schedule())
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule(), job.Name(), err)
	}

	cl := cronLogger{logger: s.logger, job: job.Name()}
	wrapped := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		_ = s.executeJob(s.ctx, job)
	}))
	s.cron.Schedule(schedule, wrapped)
	if runOnStart {
		s.runOnStart = append(s.runOnStart, wrapped)
	}

	s.logger.Info(context.Background(), fmt.Sprintf("Registered scheduled job: %s (schedule: %s)",
		job.Name(), job.Schedule()))
	return nil
}

// Start runs the scheduler until ctx is cancelled. A job already running when that
// happens finishes with its context intact; no new run starts.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info(ctx, fmt.Sprintf("Starting scheduler with %d jobs", len(s.cron.Entries())))

	for _, job := range s.runOnStart {
		s.startup.Add(1)
		go func(job cron.Job) {
			defer s.startup.Done()
			job.Run()
		}(job)
	}
	s.cron.Start()

	<-ctx.Done()
	s.logger.Info(ctx, "Stopping scheduler, waiting for running jobs")
	<-s.cron.Stop().Done()
	s.startup.Wait()
	s.cancel()
	s.logger.Info(ctx, "Scheduler stopped")
	return ctx.Err()
}

// executeJob executes a job and logs timing
func (s *Scheduler) executeJob(ctx context.Context, job Job) error {
	ctx = observability.WithFields(ctx, observability.Field{Key: "scheduled_job", Value: job.Name()})

	start := time.Now()
	s.logger.Info(ctx, fmt.Sprintf("Executing scheduled job: %s", job.Name()))

	err := job.Run(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error(ctx, fmt.Sprintf("Job %s failed after %v", job.Name(), duration), err)
		return err
	}

	s.logger.Info(ctx, fmt.Sprintf("Job %s completed successfully in %v", job.Name(), duration))
	return nil
}

// cronLogger adapts observability.Logger to cron.Logger
type cronLogger struct {
	logger *observability.Logger
	job    string
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(l.context(keysAndValues), msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(l.context(keysAndValues), msg, err)
}

func (l cronLogger) context(keysAndValues []interface{}) context.Context {
	fields := []observability.Field{{Key: "scheduled_job", Value: l.job}}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, observability.Field{Key: fmt.Sprint(keysAndValues[i]), Value: keysAndValues[i+1]})
	}
	return observability.WithFields(context.Background(), fields...)
}
