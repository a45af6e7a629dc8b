package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"site-functions/internal/clients/mail"
	"site-functions/internal/observability"
	"time"
)

var (
	ErrInvalidEmailAddress = errors.New("invalid email address")
	ErrEmptyTemplate       = errors.New("email template is empty")
)

// Senders holds the addresses contract mail is sent from and to
type Senders struct {
	Signer    string // from address on the signer's confirmation
	Owner     string // from address on the owner's notification
	NotifyTo  string // owner inbox
	Signature string // sign-off name on the confirmation
}

// EmailService renders and sends contract notifications
type EmailService struct {
	mailer    Mailer
	logger    *observability.Logger
	senders   Senders
	templates map[string]*template.Template
}

// TemplateData represents the data that can be used in templates
type TemplateData struct {
	ContractID    string
	SignerName    string
	SignerTitle   string
	SignerEmail   string
	SignedAt      string
	IPAddress     string
	UserAgent     string
	AgreedToTerms bool
	Signature     string
}

const (
	templateOwner  = "contract_signed_owner"
	templateSigner = "contract_signed_signer"
)

var templates = map[string]string{
	templateOwner: `
<h2>Contract Signed</h2>
<p><strong>Contract:</strong> {{.ContractID}}</p>
<p><strong>Signed by:</strong> {{.SignerName}}</p>
<p><strong>Title:</strong> {{.SignerTitle}}</p>
<p><strong>Email:</strong> {{.SignerEmail}}</p>
<p><strong>Date:</strong> {{.SignedAt}}</p>
<hr>
<h3>Audit Trail</h3>
<p><strong>IP Address:</strong> {{.IPAddress}}</p>
<p><strong>User Agent:</strong> {{.UserAgent}}</p>
<p><strong>Agreed to Terms:</strong> {{if .AgreedToTerms}}Yes{{else}}No{{end}}</p>
`,
	templateSigner: `
<h2>Thank you for signing!</h2>
<p>Hi {{.SignerName}},</p>
<p>This confirms your signature on the agreement with BrandThnk.</p>
<p><strong>Contract:</strong> {{.ContractID}}</p>
<p><strong>Signed:</strong> {{.SignedAt}}</p>
<p>A copy of the signed agreement will be sent to you shortly.</p>
<p>If you have any questions, please reply to this email.</p>
<p>Best,<br>{{.Signature}}<br>BrandThnk</p>
`,
}

// New creates a new EmailService. The built-in templates are parsed once here.
func New(mailer Mailer, senders Senders, logger *observability.Logger) *EmailService {
	if senders.Signature == "" {
		senders.Signature = "Allison Netzer"
	}
	parsed := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		parsed[name] = template.Must(template.New(name).Parse(body))
	}
	return &EmailService{
		mailer:    mailer,
		logger:    logger,
		senders:   senders,
		templates: parsed,
	}
}

// renderTemplate renders a template with the provided data
func (s *EmailService) renderTemplate(templateName string, data TemplateData) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// SendOwnerNotification tells the owner inbox that a contract was signed
func (s *EmailService) SendOwnerNotification(ctx context.Context, data TemplateData) error {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "email_type", Value: templateOwner},
		observability.Field{Key: "contract_id", Value: data.ContractID},
	)

	return s.send(ctx, mail.Message{
		From:    s.senders.Owner,
		To:      s.senders.NotifyTo,
		Subject: fmt.Sprintf("Contract Signed: %s", data.ContractID),
	}, templateOwner, data)
}

// SendSignerConfirmation sends the signer a copy of what they agreed to
func (s *EmailService) SendSignerConfirmation(ctx context.Context, data TemplateData) error {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "email_type", Value: templateSigner},
		observability.Field{Key: "contract_id", Value: data.ContractID},
	)

	if data.SignerEmail == "" {
		return ErrInvalidEmailAddress
	}

	return s.send(ctx, mail.Message{
		From:    s.senders.Signer,
		To:      data.SignerEmail,
		Subject: "Agreement Signed - BrandThnk",
	}, templateSigner, data)
}

func (s *EmailService) send(ctx context.Context, msg mail.Message, templateName string, data TemplateData) error {
	if data.Signature == "" {
		data.Signature = s.senders.Signature
	}

	html, err := s.renderTemplate(templateName, data)
	if err != nil {
		s.logger.Error(ctx, fmt.Sprintf("failed to render %s template", templateName), err)
		return fmt.Errorf("%w: %s", ErrEmptyTemplate, err.Error())
	}
	msg.HTML = html

	if _, err := s.mailer.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", templateName, err)
	}
	return nil
}

// FormatSignedAt renders an ISO timestamp for display. Unparsable input is shown as given.
func FormatSignedAt(signedAt string) string {
	t, err := time.Parse(time.RFC3339Nano, signedAt)
	if err != nil {
		return signedAt
	}
	return t.UTC().Format("1/2/2006, 3:04:05 PM")
}
