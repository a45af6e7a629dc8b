package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"site-functions/internal/observability"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Import the pgx stdlib for sqlx
	"github.com/jmoiron/sqlx"
)

// DefaultTemplateName is the template row the postgres repository resolves.
const DefaultTemplateName = "briefing"

// PostgresRepository serves the newsletter from the newsletter_* tables
type PostgresRepository struct {
	db           *sqlx.DB
	logger       *observability.Logger
	templateName string
}

func NewPostgresRepository(connectionString string, logger *observability.Logger) (*PostgresRepository, error) {
	db, err := sqlx.Open("pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return NewPostgresRepositoryWithDB(db, logger), nil
}

func NewPostgresRepositoryWithDB(db *sqlx.DB, logger *observability.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger, templateName: DefaultTemplateName}
}

// DB returns the underlying database connection
func (s *PostgresRepository) DB() *sqlx.DB {
	return s.db
}

type queueRow struct {
	ID           string         `db:"id"`
	Status       string         `db:"status"`
	ScheduledFor time.Time      `db:"scheduled_for"`
	Title        string         `db:"title"`
	Subtitle     sql.NullString `db:"subtitle"`
	HTMLContent  sql.NullString `db:"html_content"`
	SubjectLine  string         `db:"subject_line"`
	FromName     sql.NullString `db:"from_name"`
	ReplyTo      sql.NullString `db:"reply_to"`
}

func (r queueRow) toQueueItem() QueueItem {
	item := QueueItem{
		ID:           r.ID,
		Status:       r.Status,
		ScheduledFor: r.ScheduledFor,
		Newsletter: Newsletter{
			Title:       r.Title,
			Subtitle:    r.Subtitle.String,
			HTMLContent: r.HTMLContent.String,
			SubjectLine: r.SubjectLine,
		},
	}
	if r.FromName.Valid || r.ReplyTo.Valid {
		item.SendConfig = &SendConfig{FromName: r.FromName.String, ReplyTo: r.ReplyTo.String}
	}
	return item
}

const sqlLoadQueue = `
SELECT id, status, scheduled_for, title, subtitle, html_content, subject_line, from_name, reply_to
FROM newsletter_queue
ORDER BY position, scheduled_for, id
`

func (s *PostgresRepository) LoadQueue(ctx context.Context) ([]QueueItem, error) {
	var rows []queueRow
	if err := s.db.SelectContext(ctx, &rows, sqlLoadQueue); err != nil {
		s.logger.Error(ctx, "failed to load newsletter queue", err)
		return nil, fmt.Errorf("failed to load newsletter queue: %w", err)
	}

	items := make([]QueueItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toQueueItem())
	}
	return items, nil
}

const sqlLoadSubscribers = `
SELECT email, name, status
FROM newsletter_subscribers
ORDER BY position, email
`

func (s *PostgresRepository) LoadSubscribers(ctx context.Context) ([]Subscriber, error) {
	subscribers := []Subscriber{}
	if err := s.db.SelectContext(ctx, &subscribers, sqlLoadSubscribers); err != nil {
		s.logger.Error(ctx, "failed to load subscribers", err)
		return nil, fmt.Errorf("failed to load subscribers: %w", err)
	}
	return subscribers, nil
}

const sqlLoadTemplate = `
SELECT body
FROM newsletter_templates
WHERE name = $1
`

func (s *PostgresRepository) LoadTemplate(ctx context.Context) (string, error) {
	var body string
	if err := s.db.GetContext(ctx, &body, sqlLoadTemplate, s.templateName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("template %s: %w", s.templateName, ErrNotFound)
		}
		s.logger.Error(ctx, "failed to load template", err)
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	return body, nil
}

const sqlClaimQueueItem = `
UPDATE newsletter_queue
SET status = 'sending', claimed_at = CURRENT_TIMESTAMP
WHERE id = $1 AND status = 'scheduled'
`

// Claim moves item id from scheduled to sending. Returns ErrClaimLost if another run got there first.
func (s *PostgresRepository) Claim(ctx context.Context, id string) error {
	ctx = observability.WithFields(ctx, observability.Field{Key: "newsletter_id", Value: id})

	res, err := s.db.ExecContext(ctx, sqlClaimQueueItem, id)
	if err != nil {
		s.logger.Error(ctx, "failed to claim queue item", err)
		return fmt.Errorf("failed to claim queue item: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read claim result: %w", err)
	}
	if rows == 0 {
		s.logger.Info(ctx, "queue item no longer scheduled")
		return ErrClaimLost
	}

	s.logger.Info(ctx, "queue item claimed")
	return nil
}
