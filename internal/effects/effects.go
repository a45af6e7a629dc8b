// Package effects classifies outbound calls as essential or best-effort.
//
// An essential call returns an error and the caller must abort with it. A best-effort
// call only ever yields an Outcome.
package effects

import (
	"context"
	"errors"
	"fmt"
	"site-functions/internal/apierrors"
	"site-functions/internal/observability"
)

// Effect is the classification of an outbound call.
type Effect string

const (
	Essential  Effect = "essential"
	BestEffort Effect = "best_effort"
)

// Status is the per-target result reported to callers.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusFailed        Status = "failed"
	StatusError         Status = "error"
	StatusNotConfigured Status = "not_configured"
)

// Outcome is what a best-effort call leaves behind.
type Outcome struct {
	Target string
	Effect Effect
	Status Status
	Err    error
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// Runner executes classified calls and records them.
type Runner struct {
	logger *observability.Logger
}

// NewRunner creates a Runner.
func NewRunner(logger *observability.Logger) Runner {
	return Runner{logger: logger}
}

// Essential runs fn. Its failure is returned classified: already-classified errors pass
// through, anything else is reported as an upstream failure of target.
func (r Runner) Essential(ctx context.Context, target string, fn func(context.Context) error) error {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "effect_target", Value: target},
		observability.Field{Key: "effect", Value: string(Essential)},
	)

	err := fn(ctx)
	status := Classify(err)
	observability.RecordSideEffect(target, string(Essential), string(status))
	if err == nil {
		return nil
	}

	r.logger.Error(ctx, "essential call failed", err)
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) {
		return err
	}
	return apierrors.Upstream(apierrors.CodeUpstreamFailed, fmt.Sprintf("%s failed", target), 0, err)
}

// BestEffort runs fn and reports its Outcome. Failures are logged, never returned.
func (r Runner) BestEffort(ctx context.Context, target string, fn func(context.Context) error) Outcome {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "effect_target", Value: target},
		observability.Field{Key: "effect", Value: string(BestEffort)},
	)

	err := fn(ctx)
	outcome := Outcome{Target: target, Effect: BestEffort, Status: Classify(err), Err: err}
	observability.RecordSideEffect(target, string(BestEffort), string(outcome.Status))

	switch outcome.Status {
	case StatusSuccess:
	case StatusNotConfigured:
		r.logger.Warn(ctx, fmt.Sprintf("%s not configured, skipped", target))
	default:
		r.logger.Error(ctx, "best-effort call failed", err)
	}
	return outcome
}

// Classify maps an error to a Status: configuration errors are not_configured, upstream
// rejections (non-2xx) are failed, anything else is error.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, apierrors.ErrConfiguration):
		return StatusNotConfigured
	}
	var apiErr *apierrors.Error
	if errors.As(err, &apiErr) && apiErr.Code == apierrors.CodeUpstreamRejected {
		return StatusFailed
	}
	return StatusError
}
