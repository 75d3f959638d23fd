package middleware

// principal.go defines the request-scoped identity object the auth
// filters resolve and handlers consume.  Handlers never look at tokens
// themselves; they read the principal the filters bound to the context.

import "github.com/labstack/echo/v4"

const principalKey = "principal"

// RememberCookieName is the cookie carrying the raw remember-me token.
const RememberCookieName = "aionify_remember"

// Principal is the authenticated identity for the current request.  For
// session requests it is decoded from JWT claims without a database
// round-trip; for remember-me and API-token requests it is loaded from
// the owning user row.
type Principal struct {
	UserID   uint64
	IsAdmin  bool
	Greeting string
}

func setPrincipal(c echo.Context, p Principal) { c.Set(principalKey, p) }

// CurrentPrincipal returns the authenticated principal bound to the
// request, if any.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	v := c.Get(principalKey)
	if v == nil {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
