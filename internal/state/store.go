// Package state persists build-graph fingerprints between runs in a SQLite
// database under the configured state directory.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS fingerprints (
    target      TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
`

// Store manages fingerprint persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the fingerprint database in stateDir.
func Open(stateDir string) (*Store, error) {
	if strings.TrimSpace(stateDir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, "fingerprints.db")
	db, err := sql.Open("sqlite", dbPath)
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

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Fingerprint returns the stored fingerprint for a target, if any.
func (s *Store) Fingerprint(ctx context.Context, target string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var fingerprint string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT fingerprint FROM fingerprints WHERE target = ?", target,
		).Scan(&fingerprint)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read fingerprint for %s: %w", target, err)
	}
	return fingerprint, true, nil
}

// SaveFingerprint upserts the fingerprint for a target.
func (s *Store) SaveFingerprint(ctx context.Context, target, fingerprint string) error {
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO fingerprints (target, fingerprint, updated_at)
             VALUES (?, ?, ?)
             ON CONFLICT(target) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
			target, fingerprint, time.Now().UTC().Format(time.RFC3339))
		return execErr
	})
	if err != nil {
		return fmt.Errorf("save fingerprint for %s: %w", target, err)
	}
	return nil
}

// Targets lists every target with a stored fingerprint, sorted by name.
func (s *Store) Targets(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT target FROM fingerprints ORDER BY target")
	if err != nil {
		return nil, fmt.Errorf("list fingerprints: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("scan fingerprint row: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// Prune removes stored fingerprints for targets no longer in the graph.
func (s *Store) Prune(ctx context.Context, known []string) error {
	ctx = ensureContext(ctx)
	keep := make(map[string]struct{}, len(known))
	for _, name := range known {
		keep[name] = struct{}{}
	}

	stored, err := s.Targets(ctx)
	if err != nil {
		return err
	}
	for _, target := range stored {
		if _, ok := keep[target]; ok {
			continue
		}
		if err := retryOnBusy(ctx, func() error {
			_, execErr := s.db.ExecContext(ctx, "DELETE FROM fingerprints WHERE target = ?", target)
			return execErr
		}); err != nil {
			return fmt.Errorf("prune fingerprint %s: %w", target, err)
		}
	}
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
