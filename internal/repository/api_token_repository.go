package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aionify/aionify/internal/model"
)

// APITokenRepo persists public-API access tokens.  One row per user
// (unique user_id key); the token value is stored raw because it is
// looked up by equality on every public-API request, never verified
// against a hash.
type APITokenRepo struct{ DB *sql.DB }

func NewAPITokenRepo(db *sql.DB) *APITokenRepo { return &APITokenRepo{DB: db} }

// GetByUser returns the user's current API token, or ErrNotFound.
func (r *APITokenRepo) GetByUser(ctx context.Context, userID uint64) (*model.APIAccessToken, error) {
	var t model.APIAccessToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, created_at FROM api_access_tokens WHERE user_id=? LIMIT 1",
		userID).Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UserIDByToken resolves a presented bearer token to its owning user.
func (r *APITokenRepo) UserIDByToken(ctx context.Context, token string) (uint64, error) {
	var userID uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM api_access_tokens WHERE token=? LIMIT 1",
		token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Replace sets token as the user's API token, revoking any previous one.
// Regeneration is immediate: the old value stops resolving the moment
// the transaction commits.
func (r *APITokenRepo) Replace(ctx context.Context, userID uint64, token string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM api_access_tokens WHERE user_id=?", userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO api_access_tokens (user_id, token) VALUES (?,?)",
		userID, token); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete revokes the user's API token.  Deleting a nonexistent token is
// a no-op.
func (r *APITokenRepo) Delete(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM api_access_tokens WHERE user_id=?", userID)
	return err
}
