package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/service"
)

// PublicAPIHandler serves /api/v1, the bearer-token surface consumed by
// browser-integration scripts.  Its response shapes are a wire contract
// and intentionally smaller than the UI's: scripts only echo back what
// they sent plus a confirmation.
type PublicAPIHandler struct {
	Entries *service.EntryService
}

func NewPublicAPIHandler(s *service.EntryService) *PublicAPIHandler {
	return &PublicAPIHandler{Entries: s}
}

type apiStartReq struct {
	Title    string   `json:"title"`
	Metadata []string `json:"metadata"`
}

// Start begins a new entry and echoes title + metadata back.
func (h *PublicAPIHandler) Start(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	var req apiStartReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, _, err := h.Entries.Start(ctx, p.UserID, req.Title, nil, req.Metadata)
	if err != nil {
		return entryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":    entry.Title,
		"metadata": entry.Metadata,
	})
}

// Stop closes the running entry.  Always 200; stopped reports whether
// anything was actually running.
func (h *PublicAPIHandler) Stop(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	_, stopped, err := h.Entries.Stop(ctx, p.UserID)
	if err != nil {
		return entryError(c, err)
	}
	msg := "entry stopped"
	if !stopped {
		msg = "no active entry"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "stopped": stopped})
}

// Active returns the running entry or 404 NO_ACTIVE_ENTRY.
func (h *PublicAPIHandler) Active(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.Active(ctx, p.UserID)
	if err != nil {
		return activeEntryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entry": entry})
}

// List returns a page of entries in [startTimeFrom, startTimeTo).
func (h *PublicAPIHandler) List(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	from, to, page, size, err := listParams(c)
	if err != nil {
		return entryError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, total, err := h.Entries.List(ctx, p.UserID, from, to, page, size)
	if err != nil {
		return entryError(c, err)
	}
	return c.JSON(http.StatusOK, pageOf(entries, page, size, total))
}
