package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"site-functions/internal/apierrors"
	"site-functions/internal/observability"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxResponseBytes caps how much of a webhook response is read.
const maxResponseBytes = 1 << 20

// Client posts JSON payloads to webhook endpoints
type Client struct {
	httpClient *http.Client
	logger     *observability.Logger
	userAgent  string
}

// NewClient creates a Client. A zero timeout leaves the request bounded only by its context.
func NewClient(timeout time.Duration, logger *observability.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:    logger,
		userAgent: "Site-Functions-Webhook/1.0",
	}
}

// Response is a delivered webhook response
type Response struct {
	StatusCode int
	Body       []byte
	DurationMs int
}

// Decode unmarshals the response body into v.
func (r Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode webhook response: %w", err)
	}
	return nil
}

type requestOptions struct {
	secret  string
	headers map[string]string
}

// Option customises a single request
type Option func(*requestOptions)

// WithSecret signs the payload and sends the signature in X-Webhook-Signature.
func WithSecret(secret string) Option {
	return func(o *requestOptions) {
		o.secret = secret
	}
}

// WithBearer sets an Authorization bearer token.
func WithBearer(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithHeader sets an arbitrary request header.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// PostJSON marshals payload and POSTs it to url.
//
// An empty url is a configuration error. Transport failures and non-2xx responses are
// upstream errors; the latter carry the upstream status code.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}, opts ...Option) (Response, error) {
	if url == "" {
		return Response{}, apierrors.Configuration(apierrors.CodeNotConfigured, "webhook URL not configured")
	}

	options := requestOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if options.secret != "" {
		req.Header.Set("X-Webhook-Signature", generateSignature(options.secret, payloadBytes, startTime.Unix()))
	}
	for key, value := range options.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	durationMs := int(time.Since(startTime).Milliseconds())
	if err != nil {
		return Response{DurationMs: durationMs}, apierrors.Upstream(
			apierrors.CodeUpstreamUnreachable, "webhook request failed", 0, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn(ctx, "failed to read webhook response body")
		bodyBytes = nil
	}

	response := Response{StatusCode: resp.StatusCode, Body: bodyBytes, DurationMs: durationMs}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "webhook_status", Value: resp.StatusCode},
		observability.Field{Key: "webhook_duration_ms", Value: durationMs},
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, apierrors.Upstream(
			apierrors.CodeUpstreamRejected,
			fmt.Sprintf("webhook returned status %d", resp.StatusCode),
			resp.StatusCode,
			fmt.Errorf("received non-2xx status code: %d: %s", resp.StatusCode, truncate(bodyBytes, 512)),
		)
	}

	c.logger.Debug(ctx, "webhook delivered")
	return response, nil
}

// generateSignature signs "<timestamp>.<payload>" with HMAC-SHA256.
// Format: t=<timestamp>,v1=<hex signature>
func generateSignature(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, string(payload))

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
