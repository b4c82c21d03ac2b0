package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chatly/chatweb/internal/session"
)

// SessionRepository stores session tokens in a SQL table. The queries are
// portable between MySQL and SQLite.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Load returns the token stored under key. Expired rows are removed.
func (r *SessionRepository) Load(ctx context.Context, key string) (string, error) {
	query := `SELECT token, expires_at FROM sessions WHERE key_hash = ?`

	var token string
	var expiresAt int64
	err := r.db.QueryRowContext(ctx, query, key).Scan(&token, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", session.ErrNotFound
		}
		return "", err
	}

	if r.now().Unix() >= expiresAt {
		if err := r.Delete(ctx, key); err != nil {
			return "", err
		}
		return "", session.ErrNotFound
	}

	return token, nil
}

// Save replaces any row under key in a single transaction.
func (r *SessionRepository) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE key_hash = ?`, key); err != nil {
		return err
	}

	expiresAt := r.now().Add(ttl).Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (key_hash, token, expires_at) VALUES (?, ?, ?)`,
		key, token, expiresAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes the row under key. Deleting a missing row is not an error.
func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE key_hash = ?`, key)
	return err
}

// PurgeExpired removes every expired row and reports how many were removed.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, r.now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
