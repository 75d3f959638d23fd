package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aionify/aionify/internal/model"
)

// ActivationTokenRepo persists activation tokens.  At most one pending
// token exists per user (unique user_id key); issuing a new one replaces
// the previous, and consumption deletes the row so a token can never be
// used twice.
type ActivationTokenRepo struct{ DB *sql.DB }

func NewActivationTokenRepo(db *sql.DB) *ActivationTokenRepo {
	return &ActivationTokenRepo{DB: db}
}

// Replace stores token as the user's pending activation token, removing
// any previous one in the same transaction.
func (r *ActivationTokenRepo) Replace(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM activation_tokens WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO activation_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, token, expiresAt.UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// FindByToken returns the activation token row for the given value.
func (r *ActivationTokenRepo) FindByToken(ctx context.Context, token string) (*model.ActivationToken, error) {
	var t model.ActivationToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, created_at FROM activation_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return &t, nil
}

// DeleteByID removes a token row, consuming it.
func (r *ActivationTokenRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM activation_tokens WHERE id=?", id)
	return err
}
