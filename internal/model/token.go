package model

import "time"

// ActivationToken lets a freshly created user set their own password
// without the admin ever seeing it.  Single use: the row is deleted the
// moment the password is set.  Issuing a new one replaces any pending
// token for the same user.
type ActivationToken struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RememberMeToken is the server-side half of a "remember me" session.
// Only the SHA-256 digest of the random value handed to the client is
// stored; the raw value never touches the database.  A user may hold one
// token per browser/device.  UserAgent is informational only.
type RememberMeToken struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RememberMeToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }

// APIAccessToken is the long-lived credential for the public API.  One
// per user; stored raw because it is looked up by value, not verified
// against a hash.  Deleting the row revokes all API access immediately.
type APIAccessToken struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
