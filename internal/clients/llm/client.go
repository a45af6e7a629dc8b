// Package llm wraps the completion providers behind a single prompt-in, text-out call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"site-functions/internal/apierrors"
	"site-functions/internal/observability"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Completer turns a prompt into model text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and parameterises a provider
type Config struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// New returns the Completer for cfg.Provider.
func New(cfg Config, logger *observability.Logger) (Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, logger), nil
	case ProviderGemini:
		return NewGeminiClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

var errNotConfigured = apierrors.Configuration(apierrors.CodeNotConfigured, "API not configured")

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	cfg    Config
	logger *observability.Logger
}

func NewOpenAIClient(cfg Config, logger *observability.Logger) *OpenAIClient {
	return &OpenAIClient{cfg: cfg, logger: logger}
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if o.cfg.APIKey == "" {
		return "", errNotConfigured
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "llm_provider", Value: ProviderOpenAI},
		observability.Field{Key: "llm_model", Value: o.cfg.Model},
	)

	options := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(o.cfg.APIKey),
		openaiOption.WithMaxRetries(0),
		openaiOption.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if o.cfg.BaseURL != "" {
		options = append(options, openaiOption.WithBaseURL(o.cfg.BaseURL))
	}
	client := openai.NewClient(options...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:     openai.ChatModel(o.cfg.Model),
		MaxTokens: openai.Int(int64(o.cfg.MaxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			o.logger.Error(ctx, "completion request rejected", err)
			return "", apierrors.Upstream(apierrors.CodeUpstreamRejected, "API request failed", apiErr.StatusCode, err)
		}
		o.logger.Error(ctx, "completion request failed", err)
		return "", apierrors.Upstream(apierrors.CodeAIServiceError, "completion request failed", 0, err)
	}

	if len(resp.Choices) == 0 {
		return "", apierrors.Upstream(apierrors.CodeAIServiceError, "completion returned no choices", 0, nil)
	}

	return resp.Choices[0].Message.Content, nil
}

// GeminiClient talks to Google's Gemini models
type GeminiClient struct {
	cfg    Config
	logger *observability.Logger
}

func NewGeminiClient(cfg Config, logger *observability.Logger) *GeminiClient {
	return &GeminiClient{cfg: cfg, logger: logger}
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errNotConfigured
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "llm_provider", Value: ProviderGemini},
		observability.Field{Key: "llm_model", Value: g.cfg.Model},
	)

	c, err := genai.NewClient(ctx, option.WithAPIKey(g.cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer c.Close()

	model := c.GenerativeModel(g.cfg.Model)
	model.SetMaxOutputTokens(int32(g.cfg.MaxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			g.logger.Error(ctx, "completion request rejected", err)
			return "", apierrors.Upstream(apierrors.CodeUpstreamRejected, "API request failed", gErr.Code, err)
		}
		g.logger.Error(ctx, "completion request failed", err)
		return "", apierrors.Upstream(apierrors.CodeAIServiceError, "completion request failed", 0, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apierrors.Upstream(apierrors.CodeAIServiceError, "no content returned from Gemini", 0, nil)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}
