// Package service holds the business rules between HTTP handlers and the
// repositories: the time log entry state machine, the stateful token
// lifecycles and the brute-force limiter.
package service

import "errors"

// Validation errors, surfaced as HTTP 400 with a stable error code.
var (
	ErrTitleBlank        = errors.New("title must not be blank")
	ErrTitleTooLong      = errors.New("title exceeds 1000 characters")
	ErrInvalidRange      = errors.New("startTimeFrom must be before startTimeTo")
	ErrInvalidPagination = errors.New("invalid page or size")
	ErrEndBeforeStart    = errors.New("end time must not precede start time")
	ErrWeakPassword      = errors.New("password too short")
)

// Token errors.  Both unknown and expired tokens collapse into the same
// error so callers cannot probe which tokens exist.
var (
	ErrInvalidRememberToken   = errors.New("invalid or expired remember-me token")
	ErrInvalidActivationToken = errors.New("invalid or expired activation token")
)
