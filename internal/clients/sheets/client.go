// Package sheets appends rows to a spreadsheet, either through a script webhook or the Google Sheets API.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/observability"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Row is one logged capture. JSON tags are the column names the script webhook expects.
type Row struct {
	Timestamp      string `json:"timestamp"`
	Email          string `json:"email"`
	Word1          string `json:"word1"`
	Word2          string `json:"word2"`
	Category       string `json:"category"`
	IdeasGenerated int    `json:"ideasGenerated"`
	StarredIdeas   int    `json:"starredIdeas"`
	StarredTitles  string `json:"starredTitles"`
	Source         string `json:"source"`
}

// Values returns the row in column order.
func (r Row) Values() []interface{} {
	return []interface{}{
		r.Timestamp, r.Email, r.Word1, r.Word2, r.Category,
		r.IdeasGenerated, r.StarredIdeas, r.StarredTitles, r.Source,
	}
}

// WebhookAppender posts rows to a script endpoint that owns the sheet
type WebhookAppender struct {
	poster *webhook.Client
	url    string
}

func NewWebhookAppender(poster *webhook.Client, url string) *WebhookAppender {
	return &WebhookAppender{poster: poster, url: url}
}

func (a *WebhookAppender) Append(ctx context.Context, row Row) error {
	if _, err := a.poster.PostJSON(ctx, a.url, row); err != nil {
		return fmt.Errorf("sheets webhook: %w", err)
	}
	return nil
}

// APIAppender writes rows with the Sheets v4 values.append call
type APIAppender struct {
	service       *gsheets.Service
	spreadsheetID string
	writeRange    string
	logger        *observability.Logger
}

// NewAPIAppender builds the Sheets service. Without explicit options it uses application default credentials.
func NewAPIAppender(ctx context.Context, spreadsheetID, writeRange string, logger *observability.Logger, opts ...option.ClientOption) (*APIAppender, error) {
	opts = append([]option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}, opts...)
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &APIAppender{
		service:       service,
		spreadsheetID: spreadsheetID,
		writeRange:    writeRange,
		logger:        logger,
	}, nil
}

func (a *APIAppender) Append(ctx context.Context, row Row) error {
	if a.spreadsheetID == "" {
		return apierrors.Configuration(apierrors.CodeNotConfigured, "spreadsheet not configured")
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "spreadsheet_id", Value: a.spreadsheetID})

	values := &gsheets.ValueRange{Values: [][]interface{}{row.Values()}}
	_, err := a.service.Spreadsheets.Values.Append(a.spreadsheetID, a.writeRange, values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			return apierrors.Upstream(apierrors.CodeUpstreamRejected, "sheets append rejected", gErr.Code, err)
		}
		return apierrors.Upstream(apierrors.CodeUpstreamUnreachable, "sheets append failed", 0, err)
	}

	a.logger.Debug(ctx, "row appended")
	return nil
}
