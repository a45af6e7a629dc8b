package beehiiv

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/observability"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe(t *testing.T) {
	t.Parallel()
	logger := observability.NewNopLogger()

	var got SubscribeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/publications/pub_1/subscriptions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(webhook.NewClient(0, logger), "key", "pub_1", server.URL+"/", logger)
	err := client.Subscribe(context.Background(), SubscribeRequest{
		Email:        "a@example.com",
		UTMSource:    "brand_therapy",
		CustomFields: []CustomField{{Name: "source", Value: "Brand Therapy Tool"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", got.Email)
	assert.False(t, got.ReactivateExisting)
	assert.Equal(t, "brand_therapy", got.UTMSource)
	require.Len(t, got.CustomFields, 1)
}

func TestSubscribeErrors(t *testing.T) {
	t.Parallel()
	logger := observability.NewNopLogger()

	t.Run("missing credentials", func(t *testing.T) {
		client := NewClient(webhook.NewClient(0, logger), "", "pub_1", "", logger)
		assert.ErrorIs(t, client.Subscribe(context.Background(), SubscribeRequest{Email: "a@example.com"}), apierrors.ErrConfiguration)
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := NewClient(webhook.NewClient(0, logger), "key", "pub_1", server.URL, logger)
		err := client.Subscribe(context.Background(), SubscribeRequest{Email: "a@example.com"})
		var apiErr *apierrors.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, apierrors.CodeUpstreamRejected, apiErr.Code)
	})
}
