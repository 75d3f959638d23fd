// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without depending on database/sql internals.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the caller.  Handlers translate this into HTTP 404; the
// "no active entry" case is a valid outcome, not an exception path.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when creating a user with a username
// that is already taken.  Handlers translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")

// ErrActiveEntryConflict is returned when inserting an active time log
// entry trips the unique (owner_id, active) key, meaning a concurrent
// request won the race to start an entry.  The entry service retries the
// stop-then-start sequence once before surfacing this as HTTP 409.
var ErrActiveEntryConflict = errors.New("another active entry exists")

// isDuplicateKey reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
