package model

import "time"

// User represents an application user record as stored in the `users`
// table.  A user is the root aggregate: time log entries, activation
// tokens, remember-me tokens and the API access token all belong to
// exactly one user and cascade-delete with it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hashed password; empty until activation completes.
//  Greeting     – display name shown in the UI and embedded in JWT claims.
//  IsAdmin      – whether the user may manage other accounts.
//  Locale       – BCP 47 locale used for date/number formatting.
//  Language     – language code for UI strings.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Greeting     string    `json:"greeting"`
	IsAdmin      bool      `json:"is_admin"`
	Locale       string    `json:"locale"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Activated reports whether the user has completed activation and can
// log in with a password.
func (u *User) Activated() bool { return u.PasswordHash != "" }
