// Package ledger keeps a local audit trail of upload attempts. Every
// coordinator run appends one row with its terminal state, so operators and
// the out-of-band orphan reconciliation can see exactly which storage keys
// ended in failed_register. Nothing is ever replayed from here — it is an
// audit log, not a queue.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

// driverName is modernc.org/sqlite's database/sql registration.
const driverName = "sqlite"

// Attempt is one recorded upload attempt.
type Attempt struct {
	ID         int64
	StorageKey string
	MineID     string
	State      string
	Detail     string
	CreatedAt  time.Time
}

// Ledger appends and queries upload attempts in a local SQLite database.
type Ledger struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the ledger database at path and applies
// pending schema migrations. Sole-writer: the connection pool is capped at
// one to keep SQLite writes serialized.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Ledger{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordAttempt appends the terminal state of one upload attempt. detail
// carries the error text for failed attempts and is empty on success.
func (l *Ledger) RecordAttempt(ctx context.Context, key, mineID, state, detail string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO upload_attempts (storage_key, mine_id, state, detail, created_at)
			VALUES (?, ?, ?, ?, ?)`,
		key, mineID, state, detail, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("ledger: recording attempt for %s: %w", key, err)
	}

	return nil
}

// OrphanedKeys lists storage keys whose upload ended in failed_register:
// objects that exist in the store with no metadata record. Input for the
// reconciliation sweep that owns cleanup.
func (l *Ledger) OrphanedKeys(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT storage_key FROM upload_attempts WHERE state = 'failed_register' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ledger: querying orphaned keys: %w", err)
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("ledger: scanning orphaned key: %w", err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating orphaned keys: %w", err)
	}

	return keys, nil
}

// Attempts lists all recorded attempts for a mine, newest first.
func (l *Ledger) Attempts(ctx context.Context, mineID string) ([]Attempt, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, storage_key, mine_id, state, detail, created_at
			FROM upload_attempts WHERE mine_id = ? ORDER BY id DESC`, mineID)
	if err != nil {
		return nil, fmt.Errorf("ledger: querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt

	for rows.Next() {
		var a Attempt
		var createdAt string

		if err := rows.Scan(&a.ID, &a.StorageKey, &a.MineID, &a.State, &a.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("ledger: scanning attempt: %w", err)
		}

		ts, parseErr := time.Parse(time.RFC3339, createdAt)
		if parseErr != nil {
			l.logger.Warn("invalid attempt timestamp",
				slog.Int64("id", a.ID),
				slog.String("raw", createdAt),
			)
		}

		a.CreatedAt = ts
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating attempts: %w", err)
	}

	return attempts, nil
}
