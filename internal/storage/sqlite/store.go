// Package sqlite persists the names collection in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/zhouzirui/names-api/backend/internal/model/name"
)

const schema = `CREATE TABLE IF NOT EXISTS names (
	lname     TEXT PRIMARY KEY,
	fname     TEXT NOT NULL,
	timestamp DATETIME NOT NULL
)`

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store implements name.Store on top of database/sql.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ name.Store = (*Store)(nil)

// Open creates (or reuses) the database file at path and ensures the names table exists.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := NewWithDB(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an already opened database handle.
func NewWithDB(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create names table: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Seed inserts records only when the table is empty. It reports how many were written.
func (s *Store) Seed(ctx context.Context, records []name.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM names").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count names: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, record := range records {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO names (lname, fname, timestamp) VALUES (?, ?, ?)",
			record.LastName, record.FirstName, formatTimestamp(s.now()),
		); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", record.LastName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(records), nil
}

// List returns every row in insertion order.
func (s *Store) List(ctx context.Context) ([]name.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT lname, fname, timestamp FROM names ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query names: %w", err)
	}
	defer rows.Close()

	records := make([]name.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate names: %w", err)
	}
	return records, nil
}

// Get fetches one row by primary key.
func (s *Store) Get(ctx context.Context, lastName string) (name.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT lname, fname, timestamp FROM names WHERE lname = ?", lastName)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return name.Record{}, name.ErrNotFound
	}
	return record, err
}

// Create upserts a row; an existing row keeps its rowid.
func (s *Store) Create(ctx context.Context, lastName, firstName string) (name.Record, error) {
	if lastName == "" {
		return name.Record{}, name.ErrLastNameRequired
	}

	record := name.Record{LastName: lastName, FirstName: firstName, Timestamp: s.now()}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO names (lname, fname, timestamp) VALUES (?, ?, ?)
		ON CONFLICT(lname) DO UPDATE SET fname = excluded.fname, timestamp = excluded.timestamp`,
		record.LastName, record.FirstName, formatTimestamp(record.Timestamp),
	)
	if err != nil {
		return name.Record{}, fmt.Errorf("failed to upsert %q: %w", lastName, err)
	}
	return record, nil
}

// Update reads and rewrites a row inside one transaction.
func (s *Store) Update(ctx context.Context, lastName, firstName string) (name.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return name.Record{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT fname FROM names WHERE lname = ?", lastName).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return name.Record{}, name.ErrNotFound
	}
	if err != nil {
		return name.Record{}, fmt.Errorf("failed to load %q: %w", lastName, err)
	}

	record := name.Record{LastName: lastName, FirstName: current, Timestamp: s.now()}
	if firstName != "" {
		record.FirstName = firstName
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE names SET fname = ?, timestamp = ? WHERE lname = ?",
		record.FirstName, formatTimestamp(record.Timestamp), lastName,
	); err != nil {
		return name.Record{}, fmt.Errorf("failed to update %q: %w", lastName, err)
	}

	if err := tx.Commit(); err != nil {
		return name.Record{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return record, nil
}

// Delete removes a row by primary key.
func (s *Store) Delete(ctx context.Context, lastName string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM names WHERE lname = ?", lastName)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", lastName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return name.ErrNotFound
	}
	return nil
}

// Ping checks if the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (name.Record, error) {
	var (
		record name.Record
		raw    any
	)
	if err := row.Scan(&record.LastName, &record.FirstName, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return name.Record{}, err
		}
		return name.Record{}, fmt.Errorf("failed to scan name: %w", err)
	}

	ts, err := parseTimestamp(raw)
	if err != nil {
		return name.Record{}, fmt.Errorf("failed to parse timestamp of %q: %w", record.LastName, err)
	}
	record.Timestamp = ts
	return record, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp accepts both raw text and the driver's own time conversion
// of DATETIME columns.
func parseTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.In(time.Local), nil
	case string:
		return parseTimestampText(v)
	case []byte:
		return parseTimestampText(string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", raw)
	}
}

func parseTimestampText(text string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}
