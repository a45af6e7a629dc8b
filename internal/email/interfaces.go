package email

import (
	"context"
	"site-functions/internal/clients/mail"
)

// Mailer defines the transport EmailService sends through
type Mailer interface {
	// SendEmail sends one message and returns the provider message id
	SendEmail(ctx context.Context, msg mail.Message) (string, error)
}
