package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/storefront/internal/database"
)

// PostgresEntryRepository stores session namespaces in the session_entries table
type PostgresEntryRepository struct {
	db  *database.Postgres
	ttl time.Duration
	now func() time.Time
}

// NewPostgresEntryRepository creates a new PostgresEntryRepository
func NewPostgresEntryRepository(db *database.Postgres, ttl time.Duration) *PostgresEntryRepository {
	return &PostgresEntryRepository{db: db, ttl: ttl, now: time.Now}
}

// Get retrieves a value that has not expired
func (r *PostgresEntryRepository) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM session_entries
		WHERE session_id = $1 AND key = $2
		  AND (expires_at IS NULL OR expires_at > $3)
	`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, sessionID, key, r.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %v", ErrUnavailable, key, err)
	}
	return value, nil
}

// Set upserts a value. The value is bound as text; jsonb rejects bytea input.
// With a TTL every live row of the session gets the new expiry in the same transaction.
func (r *PostgresEntryRepository) Set(ctx context.Context, sessionID, key string, value []byte) error {
	now := r.now()
	var expiresAt *time.Time
	if r.ttl > 0 {
		t := now.Add(r.ttl)
		expiresAt = &t
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO session_entries (session_id, key, value, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at
	`
	if _, err := tx.ExecContext(ctx, query, sessionID, key, string(value), now, expiresAt); err != nil {
		return fmt.Errorf("%w: failed to set %s: %v", ErrUnavailable, key, err)
	}

	if expiresAt != nil {
		refresh := `
			UPDATE session_entries
			SET expires_at = $2
			WHERE session_id = $1
			  AND (expires_at IS NULL OR expires_at > $3)
		`
		if _, err := tx.ExecContext(ctx, refresh, sessionID, *expiresAt, now); err != nil {
			return fmt.Errorf("%w: failed to refresh session expiry: %v", ErrUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes a value
func (r *PostgresEntryRepository) Delete(ctx context.Context, sessionID, key string) error {
	query := `DELETE FROM session_entries WHERE session_id = $1 AND key = $2`
	if _, err := r.db.ExecContext(ctx, query, sessionID, key); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Clear removes the whole session
func (r *PostgresEntryRepository) Clear(ctx context.Context, sessionID string) error {
	query := `DELETE FROM session_entries WHERE session_id = $1`
	if _, err := r.db.ExecContext(ctx, query, sessionID); err != nil {
		return fmt.Errorf("%w: failed to clear session: %v", ErrUnavailable, err)
	}
	return nil
}

// PurgeExpired deletes expired entries across all sessions and reports how many were removed
func (r *PostgresEntryRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM session_entries WHERE expires_at IS NOT NULL AND expires_at <= $1`
	result, err := r.db.ExecContext(ctx, query, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired entries: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}
