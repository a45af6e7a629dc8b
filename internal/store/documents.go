package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"site-functions/internal/observability"
	"sync"
	"time"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrMalformed       = errors.New("malformed document")
	ErrVersionConflict = errors.New("document changed since it was read")
	ErrClaimLost       = errors.New("queue item already claimed")
)

// Document is a stored blob plus an opaque version used for conditional writes
type Document struct {
	Body    []byte
	Version string
}

// DocumentSource reads and conditionally writes named documents
type DocumentSource interface {
	Get(ctx context.Context, key string) (Document, error)
	// PutIfMatch replaces key only if its current version is still version. Otherwise ErrVersionConflict.
	PutIfMatch(ctx context.Context, key string, body []byte, version string) error
}

// Keys names the three newsletter documents within a source
type Keys struct {
	Queue       string
	Subscribers string
	Template    string
}

// DocumentRepository serves the newsletter from JSON documents
type DocumentRepository struct {
	source DocumentSource
	keys   Keys
	logger *observability.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewDocumentRepository(source DocumentSource, keys Keys, logger *observability.Logger) *DocumentRepository {
	return &DocumentRepository{
		source: source,
		keys:   keys,
		logger: logger,
		now:    time.Now,
	}
}

// LoadQueue returns the queue in document order.
func (r *DocumentRepository) LoadQueue(ctx context.Context) ([]QueueItem, error) {
	doc, err := r.source.Get(ctx, r.keys.Queue)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue document: %w", err)
	}

	var queue QueueDocument
	if err := json.Unmarshal(doc.Body, &queue); err != nil {
		return nil, fmt.Errorf("failed to parse queue document: %w: %w", ErrMalformed, err)
	}
	if queue.Queue == nil {
		return nil, fmt.Errorf("queue document has no queue array: %w", ErrMalformed)
	}
	return queue.Queue, nil
}

// LoadSubscribers returns every subscriber in document order.
func (r *DocumentRepository) LoadSubscribers(ctx context.Context) ([]Subscriber, error) {
	doc, err := r.source.Get(ctx, r.keys.Subscribers)
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriber document: %w", err)
	}

	var subscribers SubscriberDocument
	if err := json.Unmarshal(doc.Body, &subscribers); err != nil {
		return nil, fmt.Errorf("failed to parse subscriber document: %w: %w", ErrMalformed, err)
	}
	if subscribers.Subscribers == nil {
		return nil, fmt.Errorf("subscriber document has no subscribers array: %w", ErrMalformed)
	}
	return subscribers.Subscribers, nil
}

// LoadTemplate returns the briefing template.
func (r *DocumentRepository) LoadTemplate(ctx context.Context) (string, error) {
	doc, err := r.source.Get(ctx, r.keys.Template)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(doc.Body), nil
}

// Claim moves item id from scheduled to sending with a conditional write of the queue document.
// Fields this package does not model are carried through untouched.
// Returns ErrClaimLost if the item is no longer scheduled or the document changed underneath.
func (r *DocumentRepository) Claim(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx = observability.WithFields(ctx, observability.Field{Key: "newsletter_id", Value: id})

	doc, err := r.source.Get(ctx, r.keys.Queue)
	if err != nil {
		return fmt.Errorf("failed to read queue document: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc.Body, &raw); err != nil {
		return fmt.Errorf("failed to parse queue document: %w: %w", ErrMalformed, err)
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw["queue"], &items); err != nil {
		return fmt.Errorf("failed to parse queue array: %w: %w", ErrMalformed, err)
	}

	found := false
	for _, item := range items {
		var itemID, status string
		_ = json.Unmarshal(item["id"], &itemID)
		if itemID != id {
			continue
		}
		found = true
		_ = json.Unmarshal(item["status"], &status)
		if status != StatusScheduled {
			r.logger.Info(ctx, "queue item no longer scheduled")
			return ErrClaimLost
		}
		item["status"], _ = json.Marshal(StatusSending)
		item["claimed_at"], _ = json.Marshal(r.now().UTC().Format(time.RFC3339))
		break
	}
	if !found {
		return fmt.Errorf("queue item %s: %w", id, ErrNotFound)
	}

	raw["queue"], err = json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode queue array: %w", err)
	}
	body, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode queue document: %w", err)
	}

	if err := r.source.PutIfMatch(ctx, r.keys.Queue, body, doc.Version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			r.logger.Info(ctx, "queue document changed during claim")
			return ErrClaimLost
		}
		return fmt.Errorf("failed to write queue document: %w", err)
	}

	r.logger.Info(ctx, "queue item claimed")
	return nil
}
