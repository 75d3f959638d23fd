package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aionify/aionify/internal/model"
)

// RememberTokenRepo persists remember-me tokens (single 'token_hash'
// column; the raw value is only ever held by the client's cookie).
type RememberTokenRepo struct{ DB *sql.DB }

func NewRememberTokenRepo(db *sql.DB) *RememberTokenRepo {
	return &RememberTokenRepo{DB: db}
}

// Insert stores a remember-me token digest row.
func (r *RememberTokenRepo) Insert(ctx context.Context, t *model.RememberMeToken) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO remember_me_tokens (user_id, token_hash, user_agent, expires_at) VALUES (?,?,?,?)",
		t.UserID, t.TokenHash, t.UserAgent, t.ExpiresAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// FindByHash returns the token row matching the given digest.
func (r *RememberTokenRepo) FindByHash(ctx context.Context, tokenHash string) (*model.RememberMeToken, error) {
	var t model.RememberMeToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, user_agent, created_at, expires_at FROM remember_me_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.UserAgent, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return &t, nil
}

// DeleteByHash removes a single token row.
func (r *RememberTokenRepo) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM remember_me_tokens WHERE token_hash=?", tokenHash)
	return err
}

// DeleteExpired removes all rows past their expiry.  Validation already
// deletes expired rows lazily as they are presented; this sweep catches
// tokens whose cookies were simply never sent again.
func (r *RememberTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM remember_me_tokens WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
