package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/beehiiv"
	"site-functions/internal/clients/sheets"
	"site-functions/internal/effects"
	"site-functions/internal/observability"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// SubscriptionList defines the newsletter list the captured address is added to
type SubscriptionList interface {
	Subscribe(ctx context.Context, req beehiiv.SubscribeRequest) error
}

// RowAppender defines the spreadsheet log a capture is recorded in
type RowAppender interface {
	Append(ctx context.Context, row sheets.Row) error
}

var ErrInvalidEmail = apierrors.Validation(apierrors.CodeInvalidInput, "Valid email required")

const (
	source        = "Brand Therapy Tool"
	utmSource     = "brand_therapy"
	utmMedium     = "tool"
	referringSite = "brandthnk.co/therapy"

	subscriptionTarget = "beehiiv"
	sheetTarget        = "sheets"
)

// SessionContext is what the tool knows about the visitor's session
type SessionContext struct {
	Word1         string   `json:"word1"`
	Word2         string   `json:"word2"`
	Category      string   `json:"category"`
	IdeasCount    int      `json:"ideasCount"`
	StarredCount  int      `json:"starredCount"`
	StarredTitles []string `json:"starredTitles"`
}

type Capture struct {
	Email   string
	Session *SessionContext
}

// Results holds the status of each fan-out
type Results struct {
	Beehiiv effects.Status `json:"beehiiv"`
	Sheets  effects.Status `json:"sheets"`
}

type CaptureProcessor struct {
	list     SubscriptionList
	appender RowAppender
	effects  effects.Runner
	logger   *observability.Logger
	now      func() time.Time
}

func New(list SubscriptionList, appender RowAppender, logger *observability.Logger) CaptureProcessor {
	return CaptureProcessor{
		list:     list,
		appender: appender,
		effects:  effects.NewRunner(logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Capture adds the address to the newsletter list and logs the session row.
// Neither call can fail the capture; each reports its own status.
func (p *CaptureProcessor) Capture(ctx context.Context, capture Capture) (Results, error) {
	if capture.Email == "" || !strings.Contains(capture.Email, "@") {
		return Results{}, ErrInvalidEmail
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "email", Value: capture.Email})

	var results Results
	var g errgroup.Group
	g.Go(func() error {
		results.Beehiiv = p.effects.BestEffort(ctx, subscriptionTarget, func(ctx context.Context) error {
			return p.list.Subscribe(ctx, SubscribeRequest(capture.Email))
		}).Status
		return nil
	})
	g.Go(func() error {
		results.Sheets = p.effects.BestEffort(ctx, sheetTarget, func(ctx context.Context) error {
			return p.appender.Append(ctx, BuildRow(capture, p.now()))
		}).Status
		return nil
	})
	_ = g.Wait()

	p.logger.Info(ctx, "capture processed")
	return results, nil
}

// SubscribeRequest builds the list subscription for email
func SubscribeRequest(email string) beehiiv.SubscribeRequest {
	return beehiiv.SubscribeRequest{
		Email:              email,
		ReactivateExisting: false,
		SendWelcomeEmail:   false,
		UTMSource:          utmSource,
		UTMMedium:          utmMedium,
		ReferringSite:      referringSite,
		CustomFields:       []beehiiv.CustomField{{Name: "source", Value: source}},
	}
}

// BuildRow flattens a capture into the spreadsheet columns. A missing session yields empty columns.
func BuildRow(capture Capture, now time.Time) sheets.Row {
	row := sheets.Row{
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Email:     capture.Email,
		Source:    source,
	}
	if s := capture.Session; s != nil {
		row.Word1 = s.Word1
		row.Word2 = s.Word2
		row.Category = s.Category
		row.IdeasGenerated = s.IdeasCount
		row.StarredIdeas = s.StarredCount
		row.StarredTitles = strings.Join(s.StarredTitles, "; ")
	}
	return row
}
