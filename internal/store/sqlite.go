package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - pre-migration
// 1 - initial events table
const currentSchemaVersion = 1

// SQLite is the durable event store.
type SQLite struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies
// pragmas and migrations. Idempotent - safe to call repeatedly.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append writes one event. The insert is accepted only if no event with
// the same (aggregate_type, aggregate_id, version) exists; losing that
// race returns a conflict error and the caller must re-read and retry.
func (s *SQLite) Append(ctx context.Context, e event.Event) error {
	payload, err := event.MarshalPayload(e.Payload)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (aggregate_type, aggregate_id, version, sortable_id, event_type, occurred_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.AggregateType, e.AggregateID, e.Version, e.SortableID,
		e.Payload.EventType(), e.OccurredAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.NewConflictError("event %s/%s version %d already exists",
				e.AggregateType, e.AggregateID, e.Version)
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Load returns a partition's events ordered by version.
// Returns an empty slice (not nil) for an unknown partition.
func (s *SQLite) Load(ctx context.Context, aggregateType, aggregateID string) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT aggregate_type, aggregate_id, version, sortable_id, event_type, occurred_at, payload
		FROM events
		WHERE aggregate_type = ? AND aggregate_id = ?
		ORDER BY version ASC
	`, aggregateType, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("query partition: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ReadAll returns the whole log in commit order. Used by the replay
// command to rebuild read models from scratch.
func (s *SQLite) ReadAll(ctx context.Context) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT aggregate_type, aggregate_id, version, sortable_id, event_type, occurred_at, payload
		FROM events
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents decodes rows into envelopes via the payload registry.
func scanEvents(rows *sql.Rows) ([]event.Event, error) {
	events := []event.Event{}
	for rows.Next() {
		var (
			e          event.Event
			eventType  string
			occurredAt string
			payload    string
		)
		if err := rows.Scan(&e.AggregateType, &e.AggregateID, &e.Version, &e.SortableID,
			&eventType, &occurredAt, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		e.OccurredAt = ts

		e.Payload, err = event.UnmarshalPayload(eventType, []byte(payload))
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the
// schema version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
