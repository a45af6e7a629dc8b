package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Newsletter  NewsletterConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	LLM         LLMConfig
	Services    ServicesConfig
	Unsubscribe UnsubscribeConfig
	Scheduler   SchedulerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	AllowOrigins []string
}

// NewsletterConfig holds the dispatch pipeline settings.
// WebhookURL may be empty: the pipeline reports that as a configuration error at dispatch time.
// With SendToken empty the HTTP send route refuses every caller.
type NewsletterConfig struct {
	SendToken       string
	WebhookURL      string
	WebhookSecret   string
	WebhookTimeout  time.Duration // zero means no client-side timeout
	DefaultFromName string
	DefaultReplyTo  string
	ClaimEnabled    bool
}

// StorageConfig selects where the queue, subscriber and template documents live
type StorageConfig struct {
	Driver         string // filesystem, s3 or postgres
	Directory      string
	QueueKey       string
	SubscribersKey string
	TemplateKey    string
	S3Bucket       string
	S3Region       string
	S3Prefix       string
}

// DatabaseConfig holds database connection settings for the postgres driver
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
	SSLMode  string
}

// LLMConfig holds the completion proxy settings
type LLMConfig struct {
	Provider  string // openai or gemini
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	RateLimit int // requests per minute per client IP, zero disables
}

// ServicesConfig holds external service API keys and endpoints
type ServicesConfig struct {
	ResendAPIKey          string
	ContractsSender       string
	ContractsOwnerSender  string
	ContractsNotifyTo     string
	SignatureWebhookURL   string
	BeehiivAPIKey         string
	BeehiivPublicationID  string
	BeehiivBaseURL        string
	SheetsWebhookURL      string
	SheetsSpreadsheetID   string
	SheetsRange           string
	GoogleCredentialsFile string
}

// UnsubscribeConfig holds the unsubscribe link settings
type UnsubscribeConfig struct {
	Secret     string
	WebhookURL string
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	Enabled            bool // run the scheduler inside the HTTP server
	NewsletterSchedule string
}

// Load reads and validates environment variables.
// Only SERVER_PORT is required; every integration secret is optional and reported when used.
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}
	var err error

	// Server configuration
	serverPort := getEnvWithDefault("SERVER_PORT", "8080")
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.AllowOrigins = splitList(getEnvWithDefault("CORS_ALLOW_ORIGINS", "*"))

	// Newsletter configuration
	cfg.Newsletter.SendToken = os.Getenv("NEWSLETTER_SEND_TOKEN")
	cfg.Newsletter.WebhookURL = os.Getenv("NEWSLETTER_WEBHOOK_URL")
	cfg.Newsletter.WebhookSecret = os.Getenv("NEWSLETTER_WEBHOOK_SECRET")
	cfg.Newsletter.WebhookTimeout, err = time.ParseDuration(getEnvWithDefault("WEBHOOK_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse WEBHOOK_TIMEOUT: %w", err)
	}
	cfg.Newsletter.DefaultFromName = getEnvWithDefault("NEWSLETTER_DEFAULT_FROM_NAME", "Allison Netzer")
	cfg.Newsletter.DefaultReplyTo = getEnvWithDefault("NEWSLETTER_DEFAULT_REPLY_TO", "allison@brandthnk.co")
	cfg.Newsletter.ClaimEnabled, err = strconv.ParseBool(getEnvWithDefault("NEWSLETTER_CLAIM_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NEWSLETTER_CLAIM_ENABLED: %w", err)
	}

	// Storage configuration
	cfg.Storage.Driver = getEnvWithDefault("NEWSLETTER_STORAGE_DRIVER", "filesystem")
	cfg.Storage.Directory = getEnvWithDefault("NEWSLETTER_DIR", "newsletter")
	cfg.Storage.QueueKey = getEnvWithDefault("NEWSLETTER_QUEUE_KEY", "schedule.json")
	cfg.Storage.SubscribersKey = getEnvWithDefault("NEWSLETTER_SUBSCRIBERS_KEY", "subscribers.json")
	cfg.Storage.TemplateKey = getEnvWithDefault("NEWSLETTER_TEMPLATE_KEY", "templates/briefing.html")
	cfg.Storage.S3Bucket = os.Getenv("NEWSLETTER_S3_BUCKET")
	cfg.Storage.S3Region = os.Getenv("NEWSLETTER_S3_REGION")
	cfg.Storage.S3Prefix = os.Getenv("NEWSLETTER_S3_PREFIX")

	switch cfg.Storage.Driver {
	case "filesystem":
	case "s3":
		if cfg.Storage.S3Bucket, err = requireEnv("NEWSLETTER_S3_BUCKET"); err != nil {
			return nil, err
		}
		if cfg.Storage.S3Region, err = requireEnv("NEWSLETTER_S3_REGION"); err != nil {
			return nil, err
		}
	case "postgres":
		if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
			return nil, err
		}
		if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
			return nil, err
		}
		if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
			return nil, err
		}
		if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
			return nil, err
		}
		cfg.Database.SSLMode = getEnvWithDefault("DB_SSLMODE", "require")
	default:
		return nil, fmt.Errorf("unsupported NEWSLETTER_STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	// LLM configuration
	cfg.LLM.Provider = getEnvWithDefault("LLM_PROVIDER", "openai")
	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	cfg.LLM.BaseURL = getEnvWithDefault("LLM_BASE_URL", "https://api.anthropic.com/v1/")
	defaultModel := "claude-sonnet-4-20250514"
	if cfg.LLM.Provider == "gemini" {
		defaultModel = "gemini-1.5-flash"
	}
	cfg.LLM.Model = getEnvWithDefault("LLM_MODEL", defaultModel)
	cfg.LLM.MaxTokens, err = strconv.Atoi(getEnvWithDefault("LLM_MAX_TOKENS", "1024"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM_MAX_TOKENS: %w", err)
	}
	cfg.LLM.RateLimit, err = strconv.Atoi(getEnvWithDefault("LLM_RATE_LIMIT_RPM", "30"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse LLM_RATE_LIMIT_RPM: %w", err)
	}

	// Services configuration
	cfg.Services.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.Services.ContractsSender = getEnvWithDefault("CONTRACTS_SENDER", "BrandThnk <allison@brandthnk.co>")
	cfg.Services.ContractsOwnerSender = getEnvWithDefault("CONTRACTS_OWNER_SENDER", "BrandThnk Contracts <contracts@brandthnk.co>")
	cfg.Services.ContractsNotifyTo = getEnvWithDefault("CONTRACTS_NOTIFY_TO", "allison@brandthnk.co")
	cfg.Services.SignatureWebhookURL = os.Getenv("SIGNATURE_WEBHOOK_URL")
	cfg.Services.BeehiivAPIKey = os.Getenv("BEEHIIV_API_KEY")
	cfg.Services.BeehiivPublicationID = os.Getenv("BEEHIIV_PUBLICATION_ID")
	cfg.Services.BeehiivBaseURL = getEnvWithDefault("BEEHIIV_BASE_URL", "https://api.beehiiv.com")
	cfg.Services.SheetsWebhookURL = os.Getenv("GOOGLE_SHEETS_WEBHOOK_URL")
	cfg.Services.SheetsSpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	cfg.Services.SheetsRange = getEnvWithDefault("GOOGLE_SHEETS_RANGE", "Sheet1!A:I")
	cfg.Services.GoogleCredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	// Unsubscribe configuration
	cfg.Unsubscribe.Secret = os.Getenv("UNSUBSCRIBE_SECRET")
	cfg.Unsubscribe.WebhookURL = getEnvWithDefault("UNSUBSCRIBE_WEBHOOK_URL", cfg.Newsletter.WebhookURL)

	// Scheduler configuration
	cfg.Scheduler.NewsletterSchedule = getEnvWithDefault("NEWSLETTER_SCHEDULE", "0 * * * *")
	cfg.Scheduler.Enabled, err = strconv.ParseBool(getEnvWithDefault("SCHEDULER_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SCHEDULER_ENABLED: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Name, c.SSLMode)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
