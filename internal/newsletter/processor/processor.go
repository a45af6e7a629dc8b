package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"site-functions/internal/apierrors"
	"site-functions/internal/effects"
	"site-functions/internal/observability"
	"site-functions/internal/store"
	"strings"
	"time"
)

// NewsletterRepository defines the storage operations required by NewsletterProcessor
type NewsletterRepository interface {
	LoadQueue(ctx context.Context) ([]store.QueueItem, error)
	LoadSubscribers(ctx context.Context) ([]store.Subscriber, error)
	LoadTemplate(ctx context.Context) (string, error)
	Claim(ctx context.Context, id string) error
}

// Dispatcher hands a resolved newsletter to the sending pipeline
type Dispatcher interface {
	Configured() bool
	Dispatch(ctx context.Context, req DispatchRequest) (DispatchResponse, error)
}

var (
	ErrSourceUnavailable    = apierrors.Configuration(apierrors.CodeSourceUnavailable, "Newsletter sources unavailable")
	ErrContentMissing       = apierrors.Validation(apierrors.CodeContentMissing, "Newsletter missing content")
	ErrWebhookNotConfigured = apierrors.Configuration(apierrors.CodeNotConfigured, "Webhook not configured")
	ErrDispatchFailed       = apierrors.Upstream(apierrors.CodeUpstreamFailed, "Newsletter dispatch failed", http.StatusInternalServerError, nil)
	ErrNewsletterNotFound   = apierrors.Validation(apierrors.CodeNotFound, "Newsletter not found").WithStatus(http.StatusNotFound)
)

// Template markers
const (
	MarkerTitle    = "{{TITLE}}"
	MarkerSubtitle = "{{SUBTITLE}}"
	MarkerBody     = "{{BODY_HTML}}"
)

const fullDocumentMarker = "<!DOCTYPE html>"

const dispatchTarget = "newsletter_webhook"

// State is the terminal state of one run
type State string

const (
	StateNoOp           State = "NO_OP"
	StateAlreadyClaimed State = "ALREADY_CLAIMED"
	StateReport         State = "REPORT"
	stateError          State = "ERROR"
)

// Report is the pass-through of the sending pipeline's counts, verbatim. Counts the pipeline did not report stay empty.
type Report struct {
	Newsletter string          `json:"newsletter"`
	Sent       json.RawMessage `json:"sent,omitempty"`
	Failed     json.RawMessage `json:"failed,omitempty"`
}

// Result is the outcome of Run
type Result struct {
	State        State
	NewsletterID string
	Report       Report
}

// Sources is everything one run reads
type Sources struct {
	Queue       []store.QueueItem
	Subscribers []store.Subscriber
	Template    string
}

// Options configures NewsletterProcessor
type Options struct {
	DefaultFromName string
	DefaultReplyTo  string
	ClaimEnabled    bool
}

type NewsletterProcessor struct {
	repo       NewsletterRepository
	dispatcher Dispatcher
	effects    effects.Runner
	logger     *observability.Logger
	opts       Options
}

func New(repo NewsletterRepository, dispatcher Dispatcher, logger *observability.Logger, opts Options) NewsletterProcessor {
	if opts.DefaultFromName == "" {
		opts.DefaultFromName = "Allison Netzer"
	}
	if opts.DefaultReplyTo == "" {
		opts.DefaultReplyTo = "allison@brandthnk.co"
	}
	return NewsletterProcessor{
		repo:       repo,
		dispatcher: dispatcher,
		effects:    effects.NewRunner(logger),
		logger:     logger,
		opts:       opts,
	}
}

// Run performs one tick: read sources, pick the first due item, resolve its HTML and dispatch it.
// At most one newsletter is sent per tick; a backlog drains over successive ticks.
func (p *NewsletterProcessor) Run(ctx context.Context, now time.Time) (Result, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "tick", Value: now.UTC().Format(time.RFC3339)})

	result, err := p.run(ctx, now)
	if err != nil {
		observability.RecordNewsletterRun(string(stateError))
		return Result{}, err
	}
	observability.RecordNewsletterRun(string(result.State))
	return result, nil
}

func (p *NewsletterProcessor) run(ctx context.Context, now time.Time) (Result, error) {
	sources, err := p.LoadSources(ctx)
	if err != nil {
		return Result{}, err
	}

	due := SelectDue(sources.Queue, now)
	if len(due) == 0 {
		p.logger.Info(ctx, "no newsletters ready to send")
		return Result{State: StateNoOp}, nil
	}

	item := due[0]
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "newsletter_id", Value: item.ID},
		observability.Field{Key: "due_count", Value: len(due)},
	)

	recipients := ActiveRecipients(sources.Subscribers)
	p.logger.Metrics(ctx,
		observability.MetricField{Key: "metric", Value: "newsletter_selected"},
		observability.MetricField{Key: "active_subscribers", Value: len(recipients)},
	)

	html, err := ResolveHTML(item, sources.Template)
	if err != nil {
		p.logger.Error(ctx, "newsletter has no html content", err)
		return Result{}, err
	}

	if p.opts.ClaimEnabled {
		// never claim an item that cannot be dispatched
		if !p.dispatcher.Configured() {
			p.logger.Error(ctx, "refusing to claim newsletter", ErrWebhookNotConfigured)
			return Result{}, ErrWebhookNotConfigured
		}
		if err := p.repo.Claim(ctx, item.ID); err != nil {
			if errors.Is(err, store.ErrClaimLost) {
				p.logger.Info(ctx, "newsletter already claimed by another run")
				return Result{State: StateAlreadyClaimed, NewsletterID: item.ID}, nil
			}
			p.logger.Error(ctx, "failed to claim newsletter", err)
			return Result{}, ErrSourceUnavailable.Wrap(err)
		}
	}

	resp, err := p.Dispatch(ctx, p.BuildDispatchRequest(item, html, recipients))
	if err != nil {
		return Result{}, err
	}

	p.logger.Info(ctx, "newsletter dispatched")
	return Result{
		State:        StateReport,
		NewsletterID: item.ID,
		Report:       Report{Newsletter: item.ID, Sent: resp.TotalSent, Failed: resp.Failures},
	}, nil
}

// LoadSources reads the queue, subscriber list and template. Any failure is a configuration error.
func (p *NewsletterProcessor) LoadSources(ctx context.Context) (Sources, error) {
	queue, err := p.repo.LoadQueue(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to load newsletter queue", err)
		return Sources{}, ErrSourceUnavailable.Wrap(err)
	}

	subscribers, err := p.repo.LoadSubscribers(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to load subscribers", err)
		return Sources{}, ErrSourceUnavailable.Wrap(err)
	}

	template, err := p.repo.LoadTemplate(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to load template", err)
		return Sources{}, ErrSourceUnavailable.Wrap(err)
	}

	return Sources{Queue: queue, Subscribers: subscribers, Template: template}, nil
}

// Dispatch sends req as the single essential call of a run. Every failure other than a
// missing webhook is reported as ErrDispatchFailed.
func (p *NewsletterProcessor) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResponse, error) {
	var resp DispatchResponse
	err := p.effects.Essential(ctx, dispatchTarget, func(ctx context.Context) error {
		var err error
		resp, err = p.dispatcher.Dispatch(ctx, req)
		return err
	})
	if err != nil {
		if errors.Is(err, apierrors.ErrConfiguration) {
			return DispatchResponse{}, ErrWebhookNotConfigured.Wrap(err)
		}
		return DispatchResponse{}, ErrDispatchFailed.Wrap(err)
	}
	return resp, nil
}

// BuildDispatchRequest assembles the webhook body, applying sender defaults.
func (p *NewsletterProcessor) BuildDispatchRequest(item store.QueueItem, html string, recipients []DispatchSubscriber) DispatchRequest {
	fromName, replyTo := p.opts.DefaultFromName, p.opts.DefaultReplyTo
	if item.SendConfig != nil {
		if item.SendConfig.FromName != "" {
			fromName = item.SendConfig.FromName
		}
		if item.SendConfig.ReplyTo != "" {
			replyTo = item.SendConfig.ReplyTo
		}
	}

	return DispatchRequest{
		Action:       ActionSend,
		NewsletterID: item.ID,
		Subject:      item.Newsletter.SubjectLine,
		HTML:         html,
		FromName:     fromName,
		ReplyTo:      replyTo,
		Subscribers:  recipients,
	}
}

// Preview resolves the HTML of one queue item without dispatching it.
func (p *NewsletterProcessor) Preview(ctx context.Context, id string) (string, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "newsletter_id", Value: id})

	sources, err := p.LoadSources(ctx)
	if err != nil {
		return "", err
	}

	for _, item := range sources.Queue {
		if item.ID == id {
			return ResolveHTML(item, sources.Template)
		}
	}
	return "", ErrNewsletterNotFound
}

// Due lists the items a tick at now would consider, in the order they would be sent.
func (p *NewsletterProcessor) Due(ctx context.Context, now time.Time) ([]store.QueueItem, error) {
	sources, err := p.LoadSources(ctx)
	if err != nil {
		return nil, err
	}
	return SelectDue(sources.Queue, now), nil
}

// SelectDue returns the scheduled items whose time has come, in document order.
// Items whose timestamp could not be parsed are never due.
func SelectDue(queue []store.QueueItem, now time.Time) []store.QueueItem {
	var due []store.QueueItem
	for _, item := range queue {
		if item.Status != store.StatusScheduled || item.ScheduledFor.IsZero() {
			continue
		}
		if !item.ScheduledFor.After(now) {
			due = append(due, item)
		}
	}
	return due
}

// ActiveRecipients returns the active subscribers in document order. Duplicates are kept.
func ActiveRecipients(subscribers []store.Subscriber) []DispatchSubscriber {
	recipients := []DispatchSubscriber{}
	for _, s := range subscribers {
		if s.Status == store.SubscriberActive {
			recipients = append(recipients, DispatchSubscriber{Email: s.Email, Name: s.Name})
		}
	}
	return recipients
}

// ResolveHTML returns the email body for item. Content that is already a full document is
// used verbatim; anything else is placed in the template with every marker substituted.
func ResolveHTML(item store.QueueItem, template string) (string, error) {
	content := item.Newsletter.HTMLContent
	if content == "" {
		return "", ErrContentMissing
	}

	if strings.Contains(content, fullDocumentMarker) {
		return content, nil
	}

	replacer := strings.NewReplacer(
		MarkerTitle, item.Newsletter.Title,
		MarkerSubtitle, item.Newsletter.Subtitle,
		MarkerBody, content,
	)
	return replacer.Replace(template), nil
}
