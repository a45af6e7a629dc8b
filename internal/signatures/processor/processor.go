package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/effects"
	"site-functions/internal/email"
	"site-functions/internal/observability"
	"time"

	"github.com/google/uuid"
)

// Notifier defines the contract emails sent after a signature
type Notifier interface {
	SendOwnerNotification(ctx context.Context, data email.TemplateData) error
	SendSignerConfirmation(ctx context.Context, data email.TemplateData) error
}

// AuditSink defines where signature records are archived
type AuditSink interface {
	PostJSON(ctx context.Context, url string, payload interface{}, opts ...webhook.Option) (webhook.Response, error)
}

const (
	ownerTarget  = "contract_owner_email"
	signerTarget = "contract_signer_email"
	auditTarget  = "signature_webhook"
)

// Signature is what the signing page submits
type Signature struct {
	ContractID    string `json:"contractId"`
	SignerName    string `json:"signerName"`
	SignerTitle   string `json:"signerTitle"`
	ClientEmail   string `json:"clientEmail"`
	AgreedToTerms bool   `json:"agreedToTerms"`
	SignedAt      string `json:"signedAt"`
	UserAgent     string `json:"userAgent"`
}

// Record is the audit entry built from a Signature and its request
type Record struct {
	ID            string `json:"id"`
	ContractID    string `json:"contractId"`
	SignerName    string `json:"signerName"`
	SignerTitle   string `json:"signerTitle"`
	SignerEmail   string `json:"signerEmail"`
	AgreedToTerms bool   `json:"agreedToTerms"`
	SignedAt      string `json:"signedAt"`
	IPAddress     string `json:"ipAddress"`
	UserAgent     string `json:"userAgent"`
	Timestamp     string `json:"timestamp"`
}

// Notifications reports what happened to each best-effort call
type Notifications struct {
	Owner  effects.Status
	Signer effects.Status
	Audit  effects.Status
}

type SignatureProcessor struct {
	notifier   Notifier
	audit      AuditSink
	webhookURL string
	effects    effects.Runner
	logger     *observability.Logger
	now        func() time.Time
}

func New(notifier Notifier, audit AuditSink, webhookURL string, logger *observability.Logger) SignatureProcessor {
	return SignatureProcessor{
		notifier:   notifier,
		audit:      audit,
		webhookURL: webhookURL,
		effects:    effects.NewRunner(logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Sign records the signature and sends the notifications. Notification failures are
// logged and reported, never returned: the signature itself already happened.
func (p *SignatureProcessor) Sign(ctx context.Context, sig Signature, ipAddress string) (Record, Notifications) {
	record := Record{
		ID:            uuid.New().String(),
		ContractID:    sig.ContractID,
		SignerName:    sig.SignerName,
		SignerTitle:   sig.SignerTitle,
		SignerEmail:   sig.ClientEmail,
		AgreedToTerms: sig.AgreedToTerms,
		SignedAt:      sig.SignedAt,
		IPAddress:     ipAddress,
		UserAgent:     sig.UserAgent,
		Timestamp:     p.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "signature_id", Value: record.ID},
		observability.Field{Key: "contract_id", Value: record.ContractID},
		observability.Field{Key: "signer_email", Value: record.SignerEmail},
		observability.Field{Key: "ip_address", Value: record.IPAddress},
	)
	p.logger.Info(ctx, "contract signed")

	data := email.TemplateData{
		ContractID:    record.ContractID,
		SignerName:    record.SignerName,
		SignerTitle:   record.SignerTitle,
		SignerEmail:   record.SignerEmail,
		SignedAt:      email.FormatSignedAt(record.SignedAt),
		IPAddress:     record.IPAddress,
		UserAgent:     record.UserAgent,
		AgreedToTerms: record.AgreedToTerms,
	}

	var n Notifications
	n.Owner = p.effects.BestEffort(ctx, ownerTarget, func(ctx context.Context) error {
		return p.notifier.SendOwnerNotification(ctx, data)
	}).Status
	n.Signer = p.effects.BestEffort(ctx, signerTarget, func(ctx context.Context) error {
		return p.notifier.SendSignerConfirmation(ctx, data)
	}).Status
	n.Audit = p.effects.BestEffort(ctx, auditTarget, func(ctx context.Context) error {
		_, err := p.audit.PostJSON(ctx, p.webhookURL, record)
		return err
	}).Status

	return record, n
}
