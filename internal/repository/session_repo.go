package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tumblelog/internal/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ Sessions = (*SessionRepository)(nil)

const (
	upsertSessionSQL = `
		INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, expires_at = excluded.expires_at`
	selectSessionSQL        = `SELECT id, user_id, expires_at FROM sessions WHERE id = ?`
	deleteSessionSQL        = `DELETE FROM sessions WHERE id = ?`
	deleteExpiredSessionSQL = `DELETE FROM sessions WHERE expires_at <= ?`
)

// Upsert writes the binding, replacing any previous one for the same id.
// Re-login on an existing session therefore rebinds it in a single statement.
func (r *SessionRepository) Upsert(ctx context.Context, s models.Session) error {
	_, err := r.db.ExecContext(ctx, upsertSessionSQL, s.ID, s.UserID, s.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert session %q: %w", s.ID, err)
	}
	return nil
}

// Get fetches a session by id. Returns (nil, nil) if not found. Expiry is
// the caller's concern; expired rows are still returned until swept.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRowContext(ctx, selectSessionSQL, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session %q: %w", id, err)
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	return &s, nil
}

// Delete removes the binding. Deleting an unknown id is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("delete session %q: %w", id, err)
	}
	return nil
}

// DeleteExpired removes all sessions whose expiry is at or before now and
// reports how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredSessionSQL, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for expired sessions: %w", err)
	}
	return n, nil
}
