package main

import (
	"context"
	"site-functions/internal/bootstrap"
	"site-functions/internal/config"
	"site-functions/internal/newsletter/processor"
	"site-functions/internal/observability"
	"site-functions/internal/store"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Newsletters is the part of the dispatch pipeline the CLI drives
type Newsletters interface {
	Run(ctx context.Context, now time.Time) (processor.Result, error)
	Preview(ctx context.Context, id string) (string, error)
	Due(ctx context.Context, now time.Time) ([]store.QueueItem, error)
}

// LinkMinter mints signed unsubscribe links
type LinkMinter interface {
	Link(base, email string) (string, error)
}

type app struct {
	newsletters Newsletters
	links       LinkMinter
	now         func() time.Time
	cleanup     func()
}

type appLoader func(ctx context.Context) (*app, error)

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	deps, err := bootstrap.Initialize(ctx, cfg, observability.NewLogger())
	if err != nil {
		return nil, err
	}
	return &app{
		newsletters: &deps.Newsletter,
		links:       &deps.Unsubscribe,
		now:         time.Now,
		cleanup:     deps.Cleanup,
	}, nil
}

var envFile string

// NewRootCmd creates the root 'newsletterctl' command. Dependencies are built once,
// before any subcommand runs.
func NewRootCmd(load appLoader) *cobra.Command {
	var a *app

	rootCmd := &cobra.Command{
		Use:          "newsletterctl",
		Short:        "Operate the scheduled newsletter pipeline",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to an env file to load, if present")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(envFile)

		loaded, err := load(cmd.Context())
		if err != nil {
			return err
		}
		a = loaded
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a != nil && a.cleanup != nil {
			a.cleanup()
		}
	}

	current := func() *app { return a }
	rootCmd.AddCommand(
		newSendCmd(current),
		newPreviewCmd(current),
		newDueCmd(current),
		newUnsubscribeLinkCmd(current),
	)
	return rootCmd
}
