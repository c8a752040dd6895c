package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"snatch/internal/fingerprint"
	"snatch/internal/media"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Attempt records one finished extraction launch.
type Attempt struct {
	ID         int64              `json:"id"`
	JobKey     fingerprint.JobKey `json:"job_key"`
	Site       string             `json:"site"`
	Kind       media.Kind         `json:"kind"`
	Format     string             `json:"format"`
	Quality    string             `json:"quality,omitempty"`
	URL        string             `json:"url"`
	Succeeded  bool               `json:"succeeded"`
	ExitCode   int                `json:"exit_code"`
	Stderr     string             `json:"stderr,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// Counts summarizes recorded attempts.
type Counts struct {
	Total     int64 `json:"total"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// Store persists extraction attempts in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Record inserts a finished attempt.
func (s *Store) Record(ctx context.Context, attempt Attempt) error {
	succeeded := 0
	if attempt.Succeeded {
		succeeded = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (
            job_key, site, kind, format, quality, url,
            succeeded, exit_code, stderr, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(attempt.JobKey),
		attempt.Site,
		string(attempt.Kind),
		attempt.Format,
		attempt.Quality,
		attempt.URL,
		succeeded,
		attempt.ExitCode,
		attempt.Stderr,
		attempt.StartedAt.UTC().Format(time.RFC3339Nano),
		attempt.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Recent returns the newest attempts, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_key, site, kind, format, quality, url,
                succeeded, exit_code, stderr, started_at, finished_at
         FROM attempts ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var attempt Attempt
		var jobKey, kind, startedAt, finishedAt string
		var succeeded int
		if err := rows.Scan(
			&attempt.ID, &jobKey, &attempt.Site, &kind, &attempt.Format,
			&attempt.Quality, &attempt.URL, &succeeded, &attempt.ExitCode,
			&attempt.Stderr, &startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempt.JobKey = fingerprint.JobKey(jobKey)
		attempt.Kind = media.Kind(kind)
		attempt.Succeeded = succeeded == 1
		if parsed, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			attempt.StartedAt = parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, finishedAt); err == nil {
			attempt.FinishedAt = parsed
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// CountsByOutcome returns aggregate attempt counts.
func (s *Store) CountsByOutcome(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(succeeded), 0),
                COALESCE(SUM(1 - succeeded), 0)
         FROM attempts`).Scan(&counts.Total, &counts.Succeeded, &counts.Failed)
	if err != nil {
		return Counts{}, fmt.Errorf("count attempts: %w", err)
	}
	return counts, nil
}
