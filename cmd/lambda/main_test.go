package main

import (
	"context"
	"encoding/json"
	"site-functions/internal/newsletter/processor"
	"site-functions/internal/observability"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	at     time.Time
	result processor.Result
	err    error
}

func (s *stubRunner) Run(_ context.Context, now time.Time) (processor.Result, error) {
	s.at = now
	return s.result, s.err
}

func TestHandler(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	sent, failed := json.RawMessage("1"), json.RawMessage("0")

	tests := []struct {
		name     string
		runner   *stubRunner
		expected Response
	}{
		{
			name:     "nothing due",
			runner:   &stubRunner{result: processor.Result{State: processor.StateNoOp}},
			expected: Response{State: "NO_OP"},
		},
		{
			name: "report",
			runner: &stubRunner{result: processor.Result{
				State:        processor.StateReport,
				NewsletterID: "nl-1",
				Report:       processor.Report{Newsletter: "nl-1", Sent: sent, Failed: failed},
			}},
			expected: Response{State: "REPORT", Newsletter: "nl-1", Report: &processor.Report{Newsletter: "nl-1", Sent: sent, Failed: failed}},
		},
		{
			name:     "pipeline error is reported, not returned",
			runner:   &stubRunner{err: processor.ErrWebhookNotConfigured},
			expected: Response{State: "ERROR", Error: "Webhook not configured"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHandler(tt.runner, observability.NewNopLogger(), func() time.Time { return now })

			resp, err := h(context.Background(), events.CloudWatchEvent{ID: "evt-1", Source: "aws.events"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp)
			assert.Equal(t, now, tt.runner.at)
		})
	}
}
