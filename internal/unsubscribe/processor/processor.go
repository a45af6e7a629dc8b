package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/effects"
	"site-functions/internal/observability"
	"strings"
	"time"
	"unicode/utf8"
)

// ListUpdater defines the webhook that removes an address from the subscriber list
type ListUpdater interface {
	PostJSON(ctx context.Context, url string, payload interface{}, opts ...webhook.Option) (webhook.Response, error)
}

var (
	ErrMissingParameters = apierrors.Validation(apierrors.CodeMissingParameters, "email and token are required")
	ErrInvalidLink       = apierrors.Validation(apierrors.CodeInvalidToken, "invalid unsubscribe link")
	ErrSecretMissing     = apierrors.Configuration(apierrors.CodeNotConfigured, "unsubscribe secret not configured")
)

const (
	tokenLength = 16
	listTarget  = "unsubscribe_webhook"
	actionName  = "unsubscribe"
)

// ListUpdate is the body posted to the list webhook
type ListUpdate struct {
	Action    string `json:"action"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

type UnsubscribeProcessor struct {
	updater       ListUpdater
	secret        string
	webhookURL    string
	webhookSecret string
	effects       effects.Runner
	logger        *observability.Logger
	now           func() time.Time
}

func New(updater ListUpdater, secret, webhookURL, webhookSecret string, logger *observability.Logger) UnsubscribeProcessor {
	return UnsubscribeProcessor{
		updater:       updater,
		secret:        secret,
		webhookURL:    webhookURL,
		webhookSecret: webhookSecret,
		effects:       effects.NewRunner(logger),
		logger:        logger,
		now:           time.Now,
	}
}

// Unsubscribe verifies a link and tells the list webhook. The webhook is best-effort:
// a verified request succeeds even when the list could not be updated.
func (p *UnsubscribeProcessor) Unsubscribe(ctx context.Context, encodedEmail, token, ip string) (string, error) {
	if encodedEmail == "" || token == "" {
		return "", ErrMissingParameters
	}

	email, ok := DecodeEmail(encodedEmail)
	if !ok {
		return "", ErrInvalidLink
	}

	if p.secret == "" {
		p.logger.Error(ctx, "unsubscribe rejected", ErrSecretMissing)
		return "", ErrSecretMissing
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "email", Value: email})

	if !hmac.Equal([]byte(token), []byte(Token(p.secret, email))) {
		p.logger.Warn(ctx, "invalid unsubscribe token")
		return "", ErrInvalidLink
	}

	timestamp := p.now().UTC().Format("2006-01-02T15:04:05.000Z")
	p.logger.Info(observability.WithFields(ctx,
		observability.Field{Key: "timestamp", Value: timestamp},
		observability.Field{Key: "ip", Value: ip},
	), "unsubscribe verified")

	var opts []webhook.Option
	if p.webhookSecret != "" {
		opts = append(opts, webhook.WithSecret(p.webhookSecret))
	}
	p.effects.BestEffort(ctx, listTarget, func(ctx context.Context) error {
		_, err := p.updater.PostJSON(ctx, p.webhookURL, ListUpdate{
			Action:    actionName,
			Email:     email,
			Timestamp: timestamp,
		}, opts...)
		return err
	})

	return email, nil
}

// Link mints the query string for an unsubscribe link to base
func (p *UnsubscribeProcessor) Link(base, email string) (string, error) {
	if p.secret == "" {
		return "", ErrSecretMissing
	}
	q := url.Values{}
	q.Set("email", base64.StdEncoding.EncodeToString([]byte(email)))
	q.Set("token", Token(p.secret, email))
	return base + "?" + q.Encode(), nil
}

// Token is the first 16 hex characters of HMAC-SHA256(secret, lowercase(email))
func Token(secret, email string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.ToLower(email)))
	return hex.EncodeToString(mac.Sum(nil))[:tokenLength]
}

// DecodeEmail accepts standard or URL-safe base64, padded or not.
// A '+' that arrived unescaped in a query string reads back as a space.
func DecodeEmail(encoded string) (string, bool) {
	encoded = strings.ReplaceAll(encoded, " ", "+")
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		decoded, err := enc.DecodeString(encoded)
		if err != nil {
			continue
		}
		if len(decoded) == 0 || !utf8.Valid(decoded) {
			return "", false
		}
		return string(decoded), true
	}
	return "", false
}
