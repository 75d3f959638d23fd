package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aionify/aionify/internal/model"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/utils"
)

// RememberStore is the persistence contract for remember-me tokens.
type RememberStore interface {
	Insert(ctx context.Context, t *model.RememberMeToken) error
	FindByHash(ctx context.Context, tokenHash string) (*model.RememberMeToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
}

// RememberMeService issues and validates remember-me tokens.  The client
// receives a raw 256-bit random value in a cookie; the database keeps
// only its SHA-256 digest for lookup.  Multiple tokens per user are
// allowed, one per browser/device.
type RememberMeService struct {
	store RememberStore
	ttl   time.Duration
	now   func() time.Time
}

func NewRememberMeService(store RememberStore, ttl time.Duration) *RememberMeService {
	return &RememberMeService{
		store: store,
		ttl:   ttl,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a new remember-me token for the user and returns the raw
// value to hand to the client along with its expiry.
func (s *RememberMeService) Issue(ctx context.Context, userID uint64, userAgent string) (string, time.Time, error) {
	raw, err := utils.NewOpaqueToken()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := s.now().Add(s.ttl)
	t := &model.RememberMeToken{
		UserID:    userID,
		TokenHash: utils.HashTokenRaw(raw),
		UserAgent: userAgent,
		ExpiresAt: exp,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// Validate resolves a presented raw token to its owning user.  Expired
// rows are deleted on the spot (lazy cleanup) and then rejected like any
// unknown token.
func (s *RememberMeService) Validate(ctx context.Context, raw string) (uint64, error) {
	if raw == "" {
		return 0, ErrInvalidRememberToken
	}
	hash := utils.HashTokenRaw(raw)
	t, err := s.store.FindByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrInvalidRememberToken
	}
	if err != nil {
		return 0, err
	}
	if t.Expired(s.now()) {
		_ = s.store.DeleteByHash(ctx, hash)
		return 0, ErrInvalidRememberToken
	}
	return t.UserID, nil
}

// Revoke deletes the token behind a raw value, ending that session.
// Revoking an unknown token is a no-op.
func (s *RememberMeService) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return s.store.DeleteByHash(ctx, utils.HashTokenRaw(raw))
}

// ActivationStore is the persistence contract for activation tokens.
type ActivationStore interface {
	Replace(ctx context.Context, userID uint64, token string, expiresAt time.Time) error
	FindByToken(ctx context.Context, token string) (*model.ActivationToken, error)
	DeleteByID(ctx context.Context, id uint64) error
}

// PasswordStore is the slice of the user repository the activation
// service needs.
type PasswordStore interface {
	SetPassword(ctx context.Context, userID uint64, passwordHash string) error
}

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// ActivationService manages the single-use tokens that let a freshly
// created user set their own password.  Issuing replaces any pending
// token for the user; consuming deletes the row, so a second attempt
// with the same token fails even before its expiry.
type ActivationService struct {
	tokens     ActivationStore
	users      PasswordStore
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewActivationService(tokens ActivationStore, users PasswordStore, ttl time.Duration, bcryptCost int) *ActivationService {
	return &ActivationService{
		tokens:     tokens,
		users:      users,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a fresh activation token for the user, invalidating any
// previous one, and returns the token value and its expiry.
func (s *ActivationService) Issue(ctx context.Context, userID uint64) (string, time.Time, error) {
	token := uuid.NewString()
	exp := s.now().Add(s.ttl)
	if err := s.tokens.Replace(ctx, userID, token, exp); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Consume validates the token, sets the user's password and destroys the
// token, in that order, so a failed password write leaves the token
// usable for another attempt.
func (s *ActivationService) Consume(ctx context.Context, token, newPassword string) (uint64, error) {
	if len(newPassword) < MinPasswordLen {
		return 0, ErrWeakPassword
	}
	t, err := s.tokens.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrInvalidActivationToken
	}
	if err != nil {
		return 0, err
	}
	if s.now().After(t.ExpiresAt) {
		_ = s.tokens.DeleteByID(ctx, t.ID)
		return 0, ErrInvalidActivationToken
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return 0, err
	}
	if err := s.users.SetPassword(ctx, t.UserID, hash); err != nil {
		return 0, err
	}
	if err := s.tokens.DeleteByID(ctx, t.ID); err != nil {
		return 0, err
	}
	return t.UserID, nil
}
