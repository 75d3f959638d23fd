package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/config"
	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/service"
	"github.com/aionify/aionify/internal/utils"
)

// ProfileHandler serves the authenticated user's own account: profile
// reads, profile updates and password changes.
type ProfileHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewProfileHandler(cfg config.Config, u *repository.UserRepo) *ProfileHandler {
	return &ProfileHandler{Cfg: cfg, Users: u}
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateProfileReq struct {
	Greeting *string `json:"greeting"`
	Locale   *string `json:"locale"`
	Language *string `json:"language"`
}

// Me returns the authenticated user's profile.
func (h *ProfileHandler) Me(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, CodeNotFound, "user not found")
		}
		c.Logger().Errorf("me: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.JSON(http.StatusOK, userPart{
		ID:       u.ID,
		Username: u.Username,
		Greeting: u.Greeting,
		IsAdmin:  u.IsAdmin,
		Locale:   u.Locale,
		Language: u.Language,
	})
}

// ChangePassword verifies the current password before setting a new one.
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}
	if len(req.NewPassword) < service.MinPasswordLen {
		return jsonError(c, http.StatusBadRequest, CodePasswordTooShort, "password too short")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		c.Logger().Errorf("change password: load user: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return jsonError(c, http.StatusUnauthorized, CodeInvalidCredentials, "current password is wrong")
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		c.Logger().Errorf("change password: hash: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	if err := h.Users.SetPassword(ctx, u.ID, hash); err != nil {
		c.Logger().Errorf("change password: store: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// UpdateProfile patches greeting, locale and language.  Absent fields
// keep their current values.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.UserID)
	if err != nil {
		c.Logger().Errorf("update profile: load user: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	if req.Greeting != nil {
		u.Greeting = *req.Greeting
	}
	if req.Locale != nil {
		u.Locale = *req.Locale
	}
	if req.Language != nil {
		u.Language = *req.Language
	}
	if err := h.Users.UpdateProfile(ctx, u.ID, u.Greeting, u.Locale, u.Language); err != nil {
		c.Logger().Errorf("update profile: store: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.JSON(http.StatusOK, userPart{
		ID:       u.ID,
		Username: u.Username,
		Greeting: u.Greeting,
		IsAdmin:  u.IsAdmin,
		Locale:   u.Locale,
		Language: u.Language,
	})
}
