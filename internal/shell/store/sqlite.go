package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stackpact/stackpact/internal/core/pipeline"
	"github.com/stackpact/stackpact/internal/core/policy"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Rows
// =============================================================================

// runRow represents a run row in the database.
type runRow struct {
	ID          string  `db:"id"`
	Stack       string  `db:"stack"`
	Environment string  `db:"environment"`
	State       string  `db:"state"`
	Violations  *string `db:"violations"`
	Applied     bool    `db:"applied"`
	CreatedAt   string  `db:"created_at"`
}

func toRow(record *RunRecord) (*runRow, error) {
	row := &runRow{
		ID:          record.ID,
		Stack:       record.Stack,
		Environment: record.Environment,
		State:       string(record.State),
		Applied:     record.Applied,
		CreatedAt:   record.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(record.Violations) > 0 {
		data, err := json.Marshal(record.Violations)
		if err != nil {
			return nil, NewStoreError("RecordRun", record.ID, "failed to serialize violations", ErrInvalidData)
		}
		s := string(data)
		row.Violations = &s
	}
	return row, nil
}

func fromRow(row runRow) (*RunRecord, error) {
	record := &RunRecord{
		ID:          row.ID,
		Stack:       row.Stack,
		Environment: row.Environment,
		State:       pipeline.State(row.State),
		Applied:     row.Applied,
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("GetRun", row.ID, "invalid created_at timestamp", ErrInvalidData)
	}
	record.CreatedAt = createdAt

	if row.Violations != nil && *row.Violations != "" {
		var violations []policy.Violation
		if err := json.Unmarshal([]byte(*row.Violations), &violations); err != nil {
			return nil, NewStoreError("GetRun", row.ID, "failed to deserialize violations", ErrInvalidData)
		}
		record.Violations = violations
	}

	return record, nil
}

// =============================================================================
// Run Operations
// =============================================================================

// RecordRun persists one completed run.
func (s *SQLiteStore) RecordRun(ctx context.Context, record *RunRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	row, err := toRow(record)
	if err != nil {
		return err
	}

	query := `INSERT INTO runs (id, stack, environment, state, violations, applied, created_at)
	          VALUES (:id, :stack, :environment, :state, :violations, :applied, :created_at)`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return NewStoreError("RecordRun", record.ID, "duplicate run ID", ErrDuplicateID)
		}
		return NewStoreError("RecordRun", record.ID, err.Error(), err)
	}
	return nil
}

// GetRun returns a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetRun", id, "run not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetRun", id, err.Error(), err)
	}
	return fromRow(row)
}

// ListRuns returns runs for a stack, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, stack string, opts ListOptions) ([]RunRecord, error) {
	opts = opts.Normalize()

	var rows []runRow
	query := `SELECT * FROM runs WHERE stack = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := s.db.SelectContext(ctx, &rows, query, stack, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListRuns", "", err.Error(), err)
	}

	records := make([]RunRecord, 0, len(rows))
	for _, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// LastRun returns the most recent run for a stack.
func (s *SQLiteStore) LastRun(ctx context.Context, stack string) (*RunRecord, error) {
	var row runRow
	query := `SELECT * FROM runs WHERE stack = ? ORDER BY created_at DESC LIMIT 1`
	err := s.db.GetContext(ctx, &row, query, stack)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("LastRun", "", "no runs for stack "+stack, ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("LastRun", "", err.Error(), err)
	}
	return fromRow(row)
}
