// Package handler contains the Echo HTTP handlers.  Handlers bind and
// validate request bodies, call into the service layer and translate
// sentinel errors to stable {error, errorCode} JSON bodies.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/repository"
	"github.com/aionify/aionify/internal/service"
)

// Machine-readable error codes.  Clients switch on these, never on the
// human-readable message, so the set is append-only.
const (
	CodeTitleBlank             = "TITLE_BLANK"
	CodeTitleTooLong           = "TITLE_TOO_LONG"
	CodeInvalidTimeRange       = "INVALID_TIME_RANGE"
	CodeInvalidPagination      = "INVALID_PAGINATION"
	CodeNoActiveEntry          = "NO_ACTIVE_ENTRY"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeInvalidAPIToken        = "INVALID_API_TOKEN"
	CodeTooManyFailedAttempts  = "TOO_MANY_FAILED_ATTEMPTS"
	CodeInvalidActivationToken = "INVALID_ACTIVATION_TOKEN"
	CodePasswordTooShort       = "PASSWORD_TOO_SHORT"
	CodeUsernameExists         = "USERNAME_EXISTS"
	CodeNotFound               = "NOT_FOUND"
	CodeForbidden              = "FORBIDDEN"
	CodeConflict               = "CONFLICT"
	CodeBadRequest             = "BAD_REQUEST"
	CodeInternal               = "INTERNAL"
)

func jsonError(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": msg, "errorCode": code})
}

// entryError maps entry service/repository errors to HTTP responses.
// Unknown errors become 500 INTERNAL with a generic message.
func entryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTitleBlank):
		return jsonError(c, http.StatusBadRequest, CodeTitleBlank, err.Error())
	case errors.Is(err, service.ErrTitleTooLong):
		return jsonError(c, http.StatusBadRequest, CodeTitleTooLong, err.Error())
	case errors.Is(err, service.ErrInvalidRange), errors.Is(err, service.ErrEndBeforeStart):
		return jsonError(c, http.StatusBadRequest, CodeInvalidTimeRange, err.Error())
	case errors.Is(err, service.ErrInvalidPagination):
		return jsonError(c, http.StatusBadRequest, CodeInvalidPagination, err.Error())
	case errors.Is(err, repository.ErrActiveEntryConflict):
		return jsonError(c, http.StatusConflict, CodeConflict, "another active entry exists, retry")
	case errors.Is(err, repository.ErrNotFound):
		return jsonError(c, http.StatusNotFound, CodeNotFound, "entry not found")
	default:
		c.Logger().Errorf("entry handler: %v", err)
		return jsonError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// activeEntryError is entryError specialized for GET active lookups,
// where a missing row means "nothing is running" rather than a bad id.
func activeEntryError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, CodeNoActiveEntry, "no active entry")
	}
	return entryError(c, err)
}
