package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aionify/aionify/internal/model"
	"github.com/aionify/aionify/internal/service"
	"github.com/aionify/aionify/internal/utils"
)

type fakeRemember struct {
	valid map[string]uint64
}

func (f *fakeRemember) Validate(_ context.Context, raw string) (uint64, error) {
	if uid, ok := f.valid[raw]; ok {
		return uid, nil
	}
	return 0, service.ErrInvalidRememberToken
}

type fakeUsers struct {
	users map[uint64]model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return model.User{}, errors.New("not found")
}

func callSession(t *testing.T, mw echo.MiddlewareFunc, setup func(*http.Request)) (*httptest.ResponseRecorder, *Principal) {
	t.Helper()
	e := echo.New()
	var seen *Principal
	h := mw(func(c echo.Context) error {
		p, _ := CurrentPrincipal(c)
		seen = &p
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if setup != nil {
		setup(req)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, seen
}

func TestSessionAuthAcceptsJWT(t *testing.T) {
	mw := SessionAuth("s3cret", &fakeRemember{}, &fakeUsers{})

	tok, err := utils.NewAccessToken("s3cret", 42, true, "Hi", 60)
	require.NoError(t, err)

	rec, p := callSession(t, mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, p)
	assert.EqualValues(t, 42, p.UserID)
	assert.True(t, p.IsAdmin)
	assert.Equal(t, "Hi", p.Greeting)
}

func TestSessionAuthFallsBackToRememberCookie(t *testing.T) {
	mw := SessionAuth("s3cret",
		&fakeRemember{valid: map[string]uint64{"raw-token": 7}},
		&fakeUsers{users: map[uint64]model.User{7: {ID: 7, Greeting: "Hello"}}},
	)

	// expired JWT plus a live cookie still yields a session
	expired, err := utils.NewAccessToken("s3cret", 7, false, "", -1)
	require.NoError(t, err)

	rec, p := callSession(t, mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+expired.Token)
		r.AddCookie(&http.Cookie{Name: RememberCookieName, Value: "raw-token"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, p)
	assert.EqualValues(t, 7, p.UserID)
	assert.Equal(t, "Hello", p.Greeting)
}

func TestSessionAuthRejectsWhenBothFail(t *testing.T) {
	mw := SessionAuth("s3cret", &fakeRemember{}, &fakeUsers{})

	rec, _ := callSession(t, mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
		r.AddCookie(&http.Cookie{Name: RememberCookieName, Value: "unknown"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = callSession(t, mw, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	mw := RequireAdmin()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	run := func(p *Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if p != nil {
			setPrincipal(c, *p)
		}
		require.NoError(t, mw(next)(c))
		return rec
	}

	assert.Equal(t, http.StatusForbidden, run(nil).Code)
	assert.Equal(t, http.StatusForbidden, run(&Principal{UserID: 1}).Code)
	assert.Equal(t, http.StatusOK, run(&Principal{UserID: 1, IsAdmin: true}).Code)
}
