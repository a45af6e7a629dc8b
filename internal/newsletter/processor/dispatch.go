package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/webhook"
)

const ActionSend = "send"

// DispatchSubscriber is one recipient as the sending pipeline expects it
type DispatchSubscriber struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DispatchRequest is the body posted to the sending webhook
type DispatchRequest struct {
	Action       string               `json:"action"`
	NewsletterID string               `json:"newsletterId"`
	Subject      string               `json:"subject"`
	HTML         string               `json:"html"`
	FromName     string               `json:"fromName"`
	ReplyTo      string               `json:"replyTo"`
	Subscribers  []DispatchSubscriber `json:"subscribers"`
}

// DispatchResponse is what the sending webhook reports back. The counts are kept as the
// webhook wrote them; an absent field stays empty.
type DispatchResponse struct {
	TotalSent json.RawMessage `json:"totalSent"`
	Failures  json.RawMessage `json:"failures"`
}

// WebhookDispatcher posts newsletters to the sending webhook
type WebhookDispatcher struct {
	client *webhook.Client
	url    string
	secret string
}

func NewWebhookDispatcher(client *webhook.Client, url, secret string) *WebhookDispatcher {
	return &WebhookDispatcher{client: client, url: url, secret: secret}
}

// Configured reports whether a webhook URL is set
func (d *WebhookDispatcher) Configured() bool {
	return d.url != ""
}

// Dispatch posts req and decodes the webhook's report. Whatever status the webhook answers
// with, its body is the report; only a failed transport or an unreadable body is an error.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResponse, error) {
	if !d.Configured() {
		return DispatchResponse{}, ErrWebhookNotConfigured
	}

	var opts []webhook.Option
	if d.secret != "" {
		opts = append(opts, webhook.WithSecret(d.secret))
	}

	resp, err := d.client.PostJSON(ctx, d.url, req, opts...)
	if err != nil {
		var apiErr *apierrors.Error
		if !errors.As(err, &apiErr) || apiErr.Code != apierrors.CodeUpstreamRejected {
			return DispatchResponse{}, err
		}
	}

	var out DispatchResponse
	if err := resp.Decode(&out); err != nil {
		return DispatchResponse{}, apierrors.Upstream(apierrors.CodeUpstreamFailed,
			"webhook returned an unreadable response", 0, fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}
	return out, nil
}
