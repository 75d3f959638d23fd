package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/utils"
)

// SettingsHandler manages the user's API access token: the bearer
// credential for /api/v1.  One token per user; regenerating replaces it.
type SettingsHandler struct {
	Tokens *repository.APITokenRepo
}

func NewSettingsHandler(t *repository.APITokenRepo) *SettingsHandler {
	return &SettingsHandler{Tokens: t}
}

// GetAPIToken returns the user's current API token, or 404 when none
// has been generated yet.
func (h *SettingsHandler) GetAPIToken(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tokens.GetByUser(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, CodeNotFound, "no API token")
		}
		c.Logger().Errorf("get api token: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": t.Token, "createdAt": t.CreatedAt})
}

// CreateAPIToken generates a fresh token, replacing any existing one.
// The old token stops working immediately.
func (h *SettingsHandler) CreateAPIToken(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	raw, err := utils.NewOpaqueToken()
	if err != nil {
		c.Logger().Errorf("create api token: generate: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.Replace(ctx, p.UserID, raw); err != nil {
		c.Logger().Errorf("create api token: store: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": raw})
}

// DeleteAPIToken revokes the user's API token.  Idempotent.
func (h *SettingsHandler) DeleteAPIToken(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.Delete(ctx, p.UserID); err != nil {
		c.Logger().Errorf("delete api token: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}
