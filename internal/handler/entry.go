package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/middleware"
	"github.com/aionify/aionify/internal/service"
)

// EntryHandler serves the UI-facing time log entry endpoints under /v1.
type EntryHandler struct {
	Entries *service.EntryService
}

func NewEntryHandler(s *service.EntryService) *EntryHandler { return &EntryHandler{Entries: s} }

type startEntryReq struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Metadata []string `json:"metadata"`
}

type updateEntryReq struct {
	Title     *string    `json:"title"`
	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Tags      *[]string  `json:"tags"`
	Metadata  *[]string  `json:"metadata"`
}

type entryPage struct {
	Entries       any   `json:"entries"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

// listParams parses the shared range + pagination query parameters.
// Both bounds are required; page defaults to 0 and size to 50.
func listParams(c echo.Context) (from, to time.Time, page, size int, err error) {
	from, err = time.Parse(time.RFC3339, c.QueryParam("startTimeFrom"))
	if err != nil {
		return from, to, 0, 0, service.ErrInvalidRange
	}
	to, err = time.Parse(time.RFC3339, c.QueryParam("startTimeTo"))
	if err != nil {
		return from, to, 0, 0, service.ErrInvalidRange
	}

	page, size = 0, 50
	if v := c.QueryParam("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil {
			return from, to, 0, 0, service.ErrInvalidPagination
		}
	}
	if v := c.QueryParam("size"); v != "" {
		size, err = strconv.Atoi(v)
		if err != nil {
			return from, to, 0, 0, service.ErrInvalidPagination
		}
	}
	return from, to, page, size, nil
}

func pageOf(entries any, page, size int, total int64) entryPage {
	pages := int64(0)
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return entryPage{Entries: entries, Page: page, Size: size, TotalElements: total, TotalPages: pages}
}

// List returns the user's entries whose startTime falls in
// [startTimeFrom, startTimeTo), newest first.
func (h *EntryHandler) List(c echo.Context) error {
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

// Active returns the currently running entry or 404.
func (h *EntryHandler) Active(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.Active(ctx, p.UserID)
	if err != nil {
		return activeEntryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entry": entry})
}

// Start begins a new entry, closing any running one at the same instant.
func (h *EntryHandler) Start(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	var req startEntryReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, stopped, err := h.Entries.Start(ctx, p.UserID, req.Title, req.Tags, req.Metadata)
	if err != nil {
		return entryError(c, err)
	}
	resp := echo.Map{"entry": entry}
	if stopped != nil {
		resp["stopped"] = stopped
	}
	return c.JSON(http.StatusOK, resp)
}

// Stop closes the running entry.  Idempotent: with nothing running it
// still answers 200 with stopped=false.
func (h *EntryHandler) Stop(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, stopped, err := h.Entries.Stop(ctx, p.UserID)
	if err != nil {
		return entryError(c, err)
	}
	if !stopped {
		return c.JSON(http.StatusOK, echo.Map{"message": "no active entry", "stopped": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "entry stopped", "stopped": true, "entry": entry})
}

// Update patches an entry the user owns.
func (h *EntryHandler) Update(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid entry id")
	}
	var req updateEntryReq
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Entries.Update(ctx, p.UserID, id, service.EntryPatch{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Tags:      req.Tags,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return entryError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entry": entry})
}

// Delete removes an entry the user owns.
func (h *EntryHandler) Delete(c echo.Context) error {
	p, _ := middleware.CurrentPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, CodeBadRequest, "invalid entry id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Entries.Delete(ctx, p.UserID, id); err != nil {
		return entryError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
