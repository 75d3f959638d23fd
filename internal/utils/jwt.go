package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and sent in
// the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims is the decoded payload of an access token.  The claims
// carry everything the UI needs per request (identity, admin flag,
// greeting) so that validation never requires a database round-trip.
type SessionClaims struct {
	UserID   uint64
	IsAdmin  bool
	Greeting string
}

// ErrNoSigningSecret is returned when token issuance is attempted with an
// empty secret.  Signing with a guessable default would silently undermine
// every session, so this is treated as a fatal configuration error by
// callers.
var ErrNoSigningSecret = errors.New("jwt signing secret is empty")

// NewAccessToken builds and signs an HS256 JWT for a user.  The JWT
// includes the subject (sub), an admin flag (adm), the user's greeting
// (grt), expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, isAdmin bool, greeting string, ttlMin int) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, ErrNoSigningSecret
	}
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"adm": isAdmin,
		"grt": greeting,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates the signature and expiry of a raw JWT and
// returns the decoded session claims.  Tokens signed with anything other
// than HMAC are rejected regardless of their validity.
func ParseAccessToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, errors.New("invalid claims")
	}
	var out SessionClaims
	switch sub := claims["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	default:
		return SessionClaims{}, errors.New("missing subject")
	}
	if adm, ok := claims["adm"].(bool); ok {
		out.IsAdmin = adm
	}
	if grt, ok := claims["grt"].(string); ok {
		out.Greeting = grt
	}
	return out, nil
}
