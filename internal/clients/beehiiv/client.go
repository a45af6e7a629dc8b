package beehiiv

import (
	"context"
	"fmt"
	"site-functions/internal/apierrors"
	"site-functions/internal/clients/webhook"
	"site-functions/internal/observability"
	"strings"
)

const DefaultBaseURL = "https://api.beehiiv.com"

// CustomField is a publication-defined subscriber attribute
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SubscribeRequest is the body of POST /v2/publications/{id}/subscriptions
type SubscribeRequest struct {
	Email              string        `json:"email"`
	ReactivateExisting bool          `json:"reactivate_existing"`
	SendWelcomeEmail   bool          `json:"send_welcome_email"`
	UTMSource          string        `json:"utm_source,omitempty"`
	UTMMedium          string        `json:"utm_medium,omitempty"`
	ReferringSite      string        `json:"referring_site,omitempty"`
	CustomFields       []CustomField `json:"custom_fields,omitempty"`
}

// Client adds subscribers to a Beehiiv publication
type Client struct {
	poster        *webhook.Client
	logger        *observability.Logger
	apiKey        string
	publicationID string
	baseURL       string
}

func NewClient(poster *webhook.Client, apiKey, publicationID, baseURL string, logger *observability.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		poster:        poster,
		logger:        logger,
		apiKey:        apiKey,
		publicationID: publicationID,
		baseURL:       strings.TrimRight(baseURL, "/"),
	}
}

// Subscribe creates (or re-sends) a subscription. Missing credentials are a configuration error.
func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) error {
	if c.apiKey == "" || c.publicationID == "" {
		return apierrors.Configuration(apierrors.CodeNotConfigured, "subscription list not configured")
	}

	ctx = observability.WithFields(ctx, observability.Field{Key: "publication_id", Value: c.publicationID})

	url := fmt.Sprintf("%s/v2/publications/%s/subscriptions", c.baseURL, c.publicationID)
	if _, err := c.poster.PostJSON(ctx, url, req, webhook.WithBearer(c.apiKey)); err != nil {
		return fmt.Errorf("beehiiv subscribe: %w", err)
	}

	c.logger.Info(ctx, "subscriber added to publication")
	return nil
}
