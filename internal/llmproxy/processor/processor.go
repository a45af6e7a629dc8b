package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"site-functions/internal/apierrors"
	"site-functions/internal/effects"
	"site-functions/internal/observability"
)

// Completer defines the model call required by LLMProxyProcessor
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var ErrPromptRequired = apierrors.Validation(apierrors.CodeInvalidInput, "Prompt is required")

const completionTarget = "llm_completion"

type LLMProxyProcessor struct {
	completer Completer
	effects   effects.Runner
	logger    *observability.Logger
}

func New(completer Completer, logger *observability.Logger) LLMProxyProcessor {
	return LLMProxyProcessor{
		completer: completer,
		effects:   effects.NewRunner(logger),
		logger:    logger,
	}
}

// Complete forwards prompt to the configured model and returns its text.
// The prompt is checked before the credential, so an empty prompt is always a 400.
func (p *LLMProxyProcessor) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrPromptRequired
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "prompt_length", Value: len(prompt)})

	var text string
	err := p.effects.Essential(ctx, completionTarget, func(ctx context.Context) error {
		var err error
		text, err = p.completer.Complete(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}

	p.logger.Info(ctx, "completion returned")
	return text, nil
}
