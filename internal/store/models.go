package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Queue item statuses. StatusSending is only ever written by a claim.
const (
	StatusScheduled = "scheduled"
	StatusSending   = "sending"
	StatusSent      = "sent"
	StatusFailed    = "failed"
)

// Subscriber statuses
const (
	SubscriberActive       = "active"
	SubscriberUnsubscribed = "unsubscribed"
)

// Newsletter is the content of a queue item
type Newsletter struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	HTMLContent string `json:"html_content,omitempty"`
	SubjectLine string `json:"subject_line"`
}

// SendConfig overrides the sender defaults for one item
type SendConfig struct {
	FromName string `json:"from_name,omitempty"`
	ReplyTo  string `json:"reply_to,omitempty"`
}

// QueueItem is one scheduled newsletter.
// ScheduledFor is zero when the stored timestamp could not be parsed; such items are never due.
type QueueItem struct {
	ID           string      `json:"id"`
	Status       string      `json:"status"`
	ScheduledFor time.Time   `json:"scheduled_for"`
	Newsletter   Newsletter  `json:"newsletter"`
	SendConfig   *SendConfig `json:"send_config,omitempty"`
}

// timestampLayouts are tried in order. Timestamps without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (q *QueueItem) UnmarshalJSON(data []byte) error {
	type alias QueueItem
	aux := struct {
		*alias
		ScheduledFor string `json:"scheduled_for"`
	}{alias: (*alias)(q)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	q.ScheduledFor = parseTimestamp(aux.ScheduledFor)
	return nil
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Subscriber is one newsletter recipient
type Subscriber struct {
	Email  string `json:"email" db:"email"`
	Name   string `json:"name" db:"name"`
	Status string `json:"status" db:"status"`
}

// QueueDocument is the stored shape of the schedule
type QueueDocument struct {
	Queue []QueueItem `json:"queue"`
}

// SubscriberDocument is the stored shape of the subscriber list
type SubscriberDocument struct {
	Subscribers []Subscriber `json:"subscribers"`
}
