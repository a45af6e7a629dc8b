package mail

import (
	"context"
	"fmt"
	"site-functions/internal/apierrors"
	"site-functions/internal/observability"

	"github.com/resendlabs/resend-go"
)

// Message is a single outbound HTML email
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// ResendClient sends email through Resend. A client built without an API key reports
// every send as a configuration error.
type ResendClient struct {
	client *resend.Client
	logger *observability.Logger
}

func NewResendClient(apiKey string, logger *observability.Logger) *ResendClient {
	c := &ResendClient{logger: logger}
	if apiKey != "" {
		c.client = resend.NewClient(apiKey)
	}
	return c
}

// Configured reports whether an API key was supplied.
func (c *ResendClient) Configured() bool {
	return c.client != nil
}

// SendEmail sends msg and returns the provider message id.
func (c *ResendClient) SendEmail(ctx context.Context, msg Message) (string, error) {
	if c.client == nil {
		return "", apierrors.Configuration(apierrors.CodeNotConfigured, "email service not configured")
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "email_to", Value: msg.To},
		observability.Field{Key: "email_subject", Value: msg.Subject},
	)

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	res, err := c.client.Emails.Send(params)
	if err != nil {
		c.logger.Error(ctx, "failed to send email", err)
		return "", apierrors.Upstream(apierrors.CodeEmailServiceError, "failed to send email", 0, fmt.Errorf("resend: %w", err))
	}

	c.logger.Info(ctx, "email sent successfully")
	return res.Id, nil
}
