package store

import (
	"fmt"
	"os"
	"path/filepath"
	"site-functions/internal/observability"
	"sort"
	"testing"

	"github.com/jmoiron/sqlx"
)

// TestDB wraps a test database instance
type TestDB struct {
	db   *sqlx.DB
	Repo *PostgresRepository
}

// SetupTestDB connects to the database named by TEST_DB_* and applies the migrations.
// The test is skipped when no database is reachable.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbHost := getenv("TEST_DB_HOST", "localhost")
	dbPort := getenv("TEST_DB_PORT", "5432")
	dbUser := getenv("TEST_DB_USER", "site_user")
	dbPass := getenv("TEST_DB_PASSWORD", "site_password")
	dbName := getenv("TEST_DB_NAME", "site_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Open("pgx", connStr)
	if err != nil {
		t.Skipf("failed to open test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not reachable: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := runMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tdb := &TestDB{db: db, Repo: NewPostgresRepositoryWithDB(db, observability.NewNopLogger())}
	tdb.Truncate(t)
	return tdb
}

// runMigrations applies all migration files to the database
func runMigrations(db *sqlx.DB) error {
	migrationsDir := "../../migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory not found")
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir, "V*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// Truncate clears the newsletter tables
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()
	_, err := tdb.db.Exec(`TRUNCATE newsletter_queue, newsletter_subscribers, newsletter_templates`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
