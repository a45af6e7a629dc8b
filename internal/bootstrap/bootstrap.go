package bootstrap

import (
	"context"
	"fmt"
	captureHandler "site-functions/internal/capture/handler"
	captureProcessor "site-functions/internal/capture/processor"
	"site-functions/internal/clients/beehiiv"
	"site-functions/internal/clients/llm"
	"site-functions/internal/clients/mail"
	"site-functions/internal/clients/sheets"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/config"
	"site-functions/internal/email"
	llmHandler "site-functions/internal/llmproxy/handler"
	llmProcessor "site-functions/internal/llmproxy/processor"
	newsletterHandler "site-functions/internal/newsletter/handler"
	newsletterProcessor "site-functions/internal/newsletter/processor"
	"site-functions/internal/observability"
	"site-functions/internal/ratelimit"
	signatureHandler "site-functions/internal/signatures/handler"
	signatureProcessor "site-functions/internal/signatures/processor"
	"site-functions/internal/store"
	unsubscribeHandler "site-functions/internal/unsubscribe/handler"
	unsubscribeProcessor "site-functions/internal/unsubscribe/processor"

	"google.golang.org/api/option"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Logger     *observability.Logger
	Repository newsletterProcessor.NewsletterRepository
	LLMLimiter *ratelimit.Service

	// Processors used outside HTTP (scheduler, lambda, CLI)
	Newsletter  newsletterProcessor.NewsletterProcessor
	Unsubscribe unsubscribeProcessor.UnsubscribeProcessor

	// Handlers
	NewsletterHandler  newsletterHandler.Handler
	LLMProxyHandler    llmHandler.Handler
	CaptureHandler     captureHandler.Handler
	SignatureHandler   signatureHandler.Handler
	UnsubscribeHandler unsubscribeHandler.Handler

	postgres *store.PostgresRepository
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize newsletter storage
	var err error
	deps.Repository, err = deps.newRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize clients
	poster := webhook.NewClient(cfg.Newsletter.WebhookTimeout, logger)
	mailClient := mail.NewResendClient(cfg.Services.ResendAPIKey, logger)

	completer, err := llm.New(llm.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	appender, err := newRowAppender(ctx, cfg, poster, logger)
	if err != nil {
		return nil, err
	}

	// Initialize newsletter processor and handler
	deps.Newsletter = newsletterProcessor.New(
		deps.Repository,
		newsletterProcessor.NewWebhookDispatcher(poster, cfg.Newsletter.WebhookURL, cfg.Newsletter.WebhookSecret),
		logger,
		newsletterProcessor.Options{
			DefaultFromName: cfg.Newsletter.DefaultFromName,
			DefaultReplyTo:  cfg.Newsletter.DefaultReplyTo,
			ClaimEnabled:    cfg.Newsletter.ClaimEnabled,
		},
	)
	deps.NewsletterHandler = newsletterHandler.New(deps.Newsletter, logger, cfg.Newsletter.SendToken)

	// Initialize llm proxy processor and handler
	llmProc := llmProcessor.New(completer, logger)
	deps.LLMProxyHandler = llmHandler.New(llmProc, logger)
	deps.LLMLimiter = ratelimit.NewService(cfg.LLM.RateLimit, logger)

	// Initialize capture processor and handler
	list := beehiiv.NewClient(poster, cfg.Services.BeehiivAPIKey, cfg.Services.BeehiivPublicationID, cfg.Services.BeehiivBaseURL, logger)
	captureProc := captureProcessor.New(list, appender, logger)
	deps.CaptureHandler = captureHandler.New(captureProc, logger)

	// Initialize signature processor and handler
	emailService := email.New(mailClient, email.Senders{
		Signer:   cfg.Services.ContractsSender,
		Owner:    cfg.Services.ContractsOwnerSender,
		NotifyTo: cfg.Services.ContractsNotifyTo,
	}, logger)
	signatureProc := signatureProcessor.New(emailService, poster, cfg.Services.SignatureWebhookURL, logger)
	deps.SignatureHandler = signatureHandler.New(signatureProc, logger)

	// Initialize unsubscribe processor and handler
	deps.Unsubscribe = unsubscribeProcessor.New(poster, cfg.Unsubscribe.Secret, cfg.Unsubscribe.WebhookURL, cfg.Newsletter.WebhookSecret, logger)
	deps.UnsubscribeHandler = unsubscribeHandler.New(deps.Unsubscribe, logger)

	return deps, nil
}

func (d *Dependencies) newRepository(ctx context.Context, cfg *config.Config, logger *observability.Logger) (newsletterProcessor.NewsletterRepository, error) {
	keys := store.Keys{
		Queue:       cfg.Storage.QueueKey,
		Subscribers: cfg.Storage.SubscribersKey,
		Template:    cfg.Storage.TemplateKey,
	}

	switch cfg.Storage.Driver {
	case "s3":
		source, err := store.NewS3Source(ctx, cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 source: %w", err)
		}
		return store.NewDocumentRepository(source, keys, logger), nil
	case "postgres":
		repo, err := store.NewPostgresRepository(cfg.Database.ConnectionString(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		d.postgres = repo
		return repo, nil
	default:
		return store.NewDocumentRepository(store.NewFileSource(cfg.Storage.Directory), keys, logger), nil
	}
}

// newRowAppender writes straight to the Sheets API when a spreadsheet is configured, otherwise to the script webhook
func newRowAppender(ctx context.Context, cfg *config.Config, poster *webhook.Client, logger *observability.Logger) (captureProcessor.RowAppender, error) {
	if cfg.Services.SheetsSpreadsheetID == "" {
		return sheets.NewWebhookAppender(poster, cfg.Services.SheetsWebhookURL), nil
	}

	var opts []option.ClientOption
	if cfg.Services.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Services.GoogleCredentialsFile))
	}
	appender, err := sheets.NewAPIAppender(ctx, cfg.Services.SheetsSpreadsheetID, cfg.Services.SheetsRange, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return appender, nil
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	if d.postgres != nil {
		d.postgres.DB().Close()
	}
}
