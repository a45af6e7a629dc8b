package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/observability"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

var testRow = Row{
	Timestamp:      "2024-01-01T00:00:00Z",
	Email:          "a@example.com",
	Word1:          "bold",
	Word2:          "calm",
	Category:       "naming",
	IdeasGenerated: 12,
	StarredIdeas:   2,
	StarredTitles:  "One; Two",
	Source:         "Brand Therapy Tool",
}

func TestWebhookAppender(t *testing.T) {
	t.Parallel()

	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	appender := NewWebhookAppender(webhook.NewClient(0, observability.NewNopLogger()), server.URL)
	require.NoError(t, appender.Append(context.Background(), testRow))

	assert.Equal(t, "a@example.com", got["email"])
	assert.EqualValues(t, 12, got["ideasGenerated"])
	assert.EqualValues(t, 2, got["starredIdeas"])
	assert.Equal(t, "One; Two", got["starredTitles"])
}

func TestWebhookAppenderNotConfigured(t *testing.T) {
	t.Parallel()

	appender := NewWebhookAppender(webhook.NewClient(0, observability.NewNopLogger()), "")
	assert.ErrorIs(t, appender.Append(context.Background(), testRow), apierrors.ErrConfiguration)
}

func TestAPIAppender(t *testing.T) {
	t.Parallel()

	var body struct {
		Values [][]interface{} `json:"values"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-123/values/"), r.URL.Path)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-123"}`))
	}))
	defer server.Close()

	appender, err := NewAPIAppender(context.Background(), "sheet-123", "Sheet1!A:I", observability.NewNopLogger(),
		option.WithEndpoint(server.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	require.NoError(t, appender.Append(context.Background(), testRow))
	require.Len(t, body.Values, 1)
	assert.Len(t, body.Values[0], 9)
	assert.Equal(t, "a@example.com", body.Values[0][1])
}

func TestAPIAppenderRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	}))
	defer server.Close()

	appender, err := NewAPIAppender(context.Background(), "sheet-123", "Sheet1!A:I", observability.NewNopLogger(),
		option.WithEndpoint(server.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	err = appender.Append(context.Background(), testRow)
	var apiErr *apierrors.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierrors.CodeUpstreamRejected, apiErr.Code)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
