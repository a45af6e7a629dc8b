package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"site-functions/internal/apierrors"
	"site-functions/internal/observability"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSignature(t *testing.T) {
	signature := generateSignature("test-secret", []byte(`{"test":"data"}`), 1234567890)

	expected := "t=1234567890,v1="
	require.True(t, strings.HasPrefix(signature, expected), "got %s", signature)
	assert.Len(t, strings.TrimPrefix(signature, expected), 64)

	// Deterministic for the same input
	assert.Equal(t, signature, generateSignature("test-secret", []byte(`{"test":"data"}`), 1234567890))
	assert.NotEqual(t, signature, generateSignature("other-secret", []byte(`{"test":"data"}`), 1234567890))
}

func TestPostJSON(t *testing.T) {
	t.Parallel()

	var gotBody map[string]interface{}
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalSent":3,"failures":1}`))
	}))
	defer server.Close()

	client := NewClient(0, observability.NewNopLogger())
	resp, err := client.PostJSON(context.Background(), server.URL,
		map[string]string{"action": "send"},
		WithSecret("s3cret"),
		WithBearer("tok"),
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "send", gotBody["action"])
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", gotHeaders.Get("Authorization"))
	assert.True(t, strings.HasPrefix(gotHeaders.Get("X-Webhook-Signature"), "t="))

	var decoded struct {
		TotalSent int `json:"totalSent"`
		Failures  int `json:"failures"`
	}
	require.NoError(t, resp.Decode(&decoded))
	assert.Equal(t, 3, decoded.TotalSent)
	assert.Equal(t, 1, decoded.Failures)
}

func TestPostJSONWithoutSecretOmitsSignature(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Webhook-Signature"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(0, observability.NewNopLogger())
	_, err := client.PostJSON(context.Background(), server.URL, map[string]string{})
	require.NoError(t, err)
}

func TestPostJSONErrors(t *testing.T) {
	t.Parallel()
	client := NewClient(0, observability.NewNopLogger())

	t.Run("empty url is a configuration error", func(t *testing.T) {
		t.Parallel()
		_, err := client.PostJSON(context.Background(), "", nil)
		assert.ErrorIs(t, err, apierrors.ErrConfiguration)
	})

	t.Run("non-2xx is an upstream rejection carrying the status", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{})
		require.Error(t, err)
		var apiErr *apierrors.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, apierrors.CodeUpstreamRejected, apiErr.Code)
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unreachable host is a transport error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := client.PostJSON(context.Background(), url, map[string]string{})
		var apiErr *apierrors.Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, apierrors.CodeUpstreamUnreachable, apiErr.Code)
	})
}
