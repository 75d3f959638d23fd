package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/config"
	"github.com/aionify/aionify/internal/metrics"
	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/service"
	"github.com/aionify/aionify/internal/utils"
)

// AuthHandler bundles dependencies for the session endpoints: login,
// logout and account activation.
type AuthHandler struct {
	Cfg        config.Config
	Users      *repository.UserRepo
	Remember   *service.RememberMeService
	Activation *service.ActivationService
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *service.RememberMeService, a *service.ActivationService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Remember: r, Activation: a}
}

type loginReq struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type activateReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Greeting string `json:"greeting"`
	IsAdmin  bool   `json:"isAdmin"`
	Locale   string `json:"locale"`
	Language string `json:"language"`
}

type loginResp struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userPart  `json:"user"`
}

// Login verifies credentials and issues a JWT.  A user without a
// password hash has not activated yet and fails exactly like a wrong
// password: the response never reveals whether the account exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" || req.Password == "" {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "username and password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthFailures.WithLabelValues("login").Inc()
			return jsonError(c, http.StatusUnauthorized, CodeInvalidCredentials, "invalid username or password")
		}
		c.Logger().Errorf("login: load user: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		metrics.AuthFailures.WithLabelValues("login").Inc()
		return jsonError(c, http.StatusUnauthorized, CodeInvalidCredentials, "invalid username or password")
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.IsAdmin, u.Greeting, h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("login: issue token: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}

	if req.RememberMe {
		raw, exp, err := h.Remember.Issue(ctx, u.ID, c.Request().UserAgent())
		if err != nil {
			// a failed remember-me must not fail the login itself
			c.Logger().Warnf("login: issue remember-me: %v", err)
		} else {
			c.SetCookie(&http.Cookie{
				Name:     middleware.RememberCookieName,
				Value:    raw,
				Path:     "/",
				Expires:  exp,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	return c.JSON(http.StatusOK, loginResp{
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		User: userPart{
			ID:       u.ID,
			Username: u.Username,
			Greeting: u.Greeting,
			IsAdmin:  u.IsAdmin,
			Locale:   u.Locale,
			Language: u.Language,
		},
	})
}

// Logout revokes the remember-me token, if any, and clears the cookie.
// Always 200: logging out twice is not an error.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.RememberCookieName); err == nil && cookie.Value != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.Remember.Revoke(ctx, cookie.Value); err != nil {
			c.Logger().Warnf("logout: revoke remember-me: %v", err)
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.RememberCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Activate consumes an activation token and sets the account password.
// The endpoint is unauthenticated: the token itself is the credential.
func (h *AuthHandler) Activate(c echo.Context) error {
	var req activateReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Token) == "" {
		return jsonError(c, http.StatusBadRequest, CodeInvalidActivationToken, "activation token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, err := h.Activation.Consume(ctx, req.Token, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "account activated"})
	case errors.Is(err, service.ErrWeakPassword):
		return jsonError(c, http.StatusBadRequest, CodePasswordTooShort, err.Error())
	case errors.Is(err, service.ErrInvalidActivationToken):
		return jsonError(c, http.StatusBadRequest, CodeInvalidActivationToken, err.Error())
	default:
		c.Logger().Errorf("activate: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
