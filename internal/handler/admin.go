package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/service"
)

// AdminHandler serves /v1/admin.  User creation never takes a password:
// the admin hands the activation token to the new user out of band and
// the user sets their own password through /v1/auth/activate.
type AdminHandler struct {
	Users      *repository.UserRepo
	Activation *service.ActivationService
}

func NewAdminHandler(u *repository.UserRepo, a *service.ActivationService) *AdminHandler {
	return &AdminHandler{Users: u, Activation: a}
}

type createUserReq struct {
	Username string `json:"username"`
	Greeting string `json:"greeting"`
	IsAdmin  bool   `json:"isAdmin"`
	Locale   string `json:"locale"`
	Language string `json:"language"`
}

type adminUserPart struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Greeting  string    `json:"greeting"`
	IsAdmin   bool      `json:"isAdmin"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListUsers returns all users with their activation state.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		c.Logger().Errorf("admin list users: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	out := make([]adminUserPart, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, adminUserPart{
			ID:        u.ID,
			Username:  u.Username,
			Greeting:  u.Greeting,
			IsAdmin:   u.IsAdmin,
			Activated: u.Activated(),
			CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// CreateUser creates a pending account plus its activation token.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "username required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, username, "", req.Greeting, req.IsAdmin, req.Locale, req.Language)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return jsonError(c, http.StatusConflict, CodeUsernameExists, "username already exists")
		}
		c.Logger().Errorf("admin create user: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}

	token, exp, err := h.Activation.Issue(ctx, id)
	if err != nil {
		c.Logger().Errorf("admin create user: issue activation: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user": adminUserPart{
			ID:       id,
			Username: username,
			Greeting: req.Greeting,
			IsAdmin:  req.IsAdmin,
		},
		"activationToken": token,
		"expiresAt":       exp,
	})
}

// DeleteUser removes a user; entries and tokens cascade in the schema.
// Self-deletion is rejected so the last admin cannot lock everyone out.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid user id")
	}
	if id == p.UserID {
		return jsonError(c, http.StatusConflict, CodeConflict, "cannot delete your own account")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, CodeNotFound, "user not found")
		}
		c.Logger().Errorf("admin delete user: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.NoContent(http.StatusNoContent)
}

// RegenerateActivation replaces the user's pending activation token.
func (h *AdminHandler) RegenerateActivation(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, CodeNotFound, "user not found")
		}
		c.Logger().Errorf("admin regenerate activation: load user: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	if u.Activated() {
		return jsonError(c, http.StatusConflict, CodeConflict, "user is already activated")
	}

	token, exp, err := h.Activation.Issue(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("admin regenerate activation: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"activationToken": token, "expiresAt": exp})
}
