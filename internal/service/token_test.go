package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionify/aionify/internal/model"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/utils"
)

type fakeRememberStore struct {
	rows   map[string]*model.RememberMeToken
	nextID uint64
}

func newFakeRememberStore() *fakeRememberStore {
	return &fakeRememberStore{rows: make(map[string]*model.RememberMeToken)}
}

func (f *fakeRememberStore) Insert(_ context.Context, t *model.RememberMeToken) error {
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.rows[t.TokenHash] = &cp
	return nil
}

func (f *fakeRememberStore) FindByHash(_ context.Context, hash string) (*model.RememberMeToken, error) {
	t, ok := f.rows[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRememberStore) DeleteByHash(_ context.Context, hash string) error {
	delete(f.rows, hash)
	return nil
}

func newTestRememberService(ttl time.Duration) (*RememberMeService, *fakeRememberStore, *fixedClock) {
	store := newFakeRememberStore()
	clk := &fixedClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewRememberMeService(store, ttl)
	svc.now = clk.now
	return svc, store, clk
}

func TestRememberMeRoundTrip(t *testing.T) {
	svc, store, _ := newTestRememberService(30 * 24 * time.Hour)
	ctx := context.Background()

	raw, exp, err := svc.Issue(ctx, 42, "Mozilla/5.0")
	require.NoError(t, err)
	assert.Len(t, raw, 64, "raw token is 32 bytes hex encoded")
	assert.True(t, exp.After(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)))

	// only the digest hits storage
	_, plainStored := store.rows[raw]
	assert.False(t, plainStored)
	_, hashStored := store.rows[utils.HashTokenRaw(raw)]
	assert.True(t, hashStored)

	userID, err := svc.Validate(ctx, raw)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestRememberMeRejectsUnknownToken(t *testing.T) {
	svc, _, _ := newTestRememberService(time.Hour)

	_, err := svc.Validate(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidRememberToken)

	_, err = svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRememberToken)
}

func TestRememberMeExpiredTokenIsDeletedLazily(t *testing.T) {
	svc, store, clk := newTestRememberService(time.Hour)
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, 7, "ua")
	require.NoError(t, err)

	clk.advance(time.Hour + time.Second)

	_, err = svc.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidRememberToken)
	assert.Empty(t, store.rows, "expired row is removed on the failed validation")
}

func TestRememberMeRevoke(t *testing.T) {
	svc, store, _ := newTestRememberService(time.Hour)
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, 7, "ua")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, raw))
	assert.Empty(t, store.rows)

	_, err = svc.Validate(ctx, raw)
	assert.ErrorIs(t, err, ErrInvalidRememberToken)
}

func TestRememberMeAllowsMultipleTokensPerUser(t *testing.T) {
	svc, store, _ := newTestRememberService(time.Hour)
	ctx := context.Background()

	rawA, _, err := svc.Issue(ctx, 7, "laptop")
	require.NoError(t, err)
	rawB, _, err := svc.Issue(ctx, 7, "phone")
	require.NoError(t, err)

	assert.NotEqual(t, rawA, rawB)
	assert.Len(t, store.rows, 2)

	require.NoError(t, svc.Revoke(ctx, rawA))
	_, err = svc.Validate(ctx, rawB)
	assert.NoError(t, err, "revoking one session leaves the other intact")
}

type fakeActivationStore struct {
	rows   map[uint64]*model.ActivationToken // keyed by user
	nextID uint64
}

func newFakeActivationStore() *fakeActivationStore {
	return &fakeActivationStore{rows: make(map[uint64]*model.ActivationToken)}
}

func (f *fakeActivationStore) Replace(_ context.Context, userID uint64, token string, expiresAt time.Time) error {
	f.nextID++
	f.rows[userID] = &model.ActivationToken{ID: f.nextID, UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeActivationStore) FindByToken(_ context.Context, token string) (*model.ActivationToken, error) {
	for _, t := range f.rows {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeActivationStore) DeleteByID(_ context.Context, id uint64) error {
	for uid, t := range f.rows {
		if t.ID == id {
			delete(f.rows, uid)
			return nil
		}
	}
	return nil
}

type fakePasswordStore struct {
	hashes map[uint64]string
}

func (f *fakePasswordStore) SetPassword(_ context.Context, userID uint64, hash string) error {
	if f.hashes == nil {
		f.hashes = make(map[uint64]string)
	}
	f.hashes[userID] = hash
	return nil
}

func newTestActivationService(ttl time.Duration) (*ActivationService, *fakeActivationStore, *fakePasswordStore, *fixedClock) {
	tokens := newFakeActivationStore()
	users := &fakePasswordStore{}
	clk := &fixedClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewActivationService(tokens, users, ttl, 4) // min bcrypt cost keeps tests fast
	svc.now = clk.now
	return svc, tokens, users, clk
}

func TestActivationConsumeSetsPasswordOnce(t *testing.T) {
	svc, _, users, _ := newTestActivationService(48 * time.Hour)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, 5)
	require.NoError(t, err)

	userID, err := svc.Consume(ctx, token, "hunter2hunter2")
	require.NoError(t, err)
	assert.EqualValues(t, 5, userID)
	assert.True(t, utils.VerifyPassword(users.hashes[5], "hunter2hunter2"))

	// single use even though the expiry has not passed
	_, err = svc.Consume(ctx, token, "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidActivationToken)
}

func TestActivationIssueReplacesPendingToken(t *testing.T) {
	svc, _, _, _ := newTestActivationService(48 * time.Hour)
	ctx := context.Background()

	first, _, err := svc.Issue(ctx, 5)
	require.NoError(t, err)
	second, _, err := svc.Issue(ctx, 5)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.Consume(ctx, first, "longenoughpw")
	assert.ErrorIs(t, err, ErrInvalidActivationToken, "reissuing invalidates the old token")

	_, err = svc.Consume(ctx, second, "longenoughpw")
	assert.NoError(t, err)
}

func TestActivationConsumeRejectsWeakPassword(t *testing.T) {
	svc, tokens, _, _ := newTestActivationService(48 * time.Hour)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, 5)
	require.NoError(t, err)

	_, err = svc.Consume(ctx, token, "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Len(t, tokens.rows, 1, "a rejected password does not burn the token")

	_, err = svc.Consume(ctx, token, "now-long-enough")
	assert.NoError(t, err)
}

func TestActivationConsumeRejectsExpiredToken(t *testing.T) {
	svc, tokens, _, clk := newTestActivationService(time.Hour)
	ctx := context.Background()

	token, _, err := svc.Issue(ctx, 5)
	require.NoError(t, err)

	clk.advance(time.Hour + time.Minute)

	_, err = svc.Consume(ctx, token, "longenoughpw")
	assert.ErrorIs(t, err, ErrInvalidActivationToken)
	assert.Empty(t, tokens.rows, "expired token is deleted on the failed consume")
}
