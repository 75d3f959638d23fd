package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/metrics"
	"github.com/aionify/aionify/internal/model"
	"github.com/aionify/aionify/internal/utils"
)

// RememberValidator resolves a raw remember-me cookie value to a user ID.
// service.RememberMeService implements it.
type RememberValidator interface {
	Validate(ctx context.Context, raw string) (uint64, error)
}

// UserLoader is the slice of the user repository the session filter
// needs for the remember-me fallback.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SessionAuth returns the UI-facing authentication filter.  Precedence:
// a valid JWT in the Authorization header wins; otherwise the
// remember-me cookie is tried; when both fail the request is rejected
// with 401.  The public API never reaches this filter and this filter
// never consults the public API's brute-force limiter.
func SessionAuth(secret string, remember RememberValidator, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				raw := strings.TrimPrefix(auth, "Bearer ")
				if claims, err := utils.ParseAccessToken(secret, raw); err == nil {
					setPrincipal(c, Principal{
						UserID:   claims.UserID,
						IsAdmin:  claims.IsAdmin,
						Greeting: claims.Greeting,
					})
					return next(c)
				}
				// fall through: an expired JWT with a live remember-me
				// cookie still yields a session
			}

			if cookie, err := c.Cookie(RememberCookieName); err == nil && cookie.Value != "" {
				ctx := c.Request().Context()
				if userID, err := remember.Validate(ctx, cookie.Value); err == nil {
					if u, err := users.GetByID(ctx, userID); err == nil {
						setPrincipal(c, Principal{
							UserID:   u.ID,
							IsAdmin:  u.IsAdmin,
							Greeting: u.Greeting,
						})
						return next(c)
					}
				}
			}

			metrics.AuthFailures.WithLabelValues("session").Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error":     "authentication required",
				"errorCode": "UNAUTHORIZED",
			})
		}
	}
}

// RequireAdmin rejects requests whose principal is not an administrator.
// It assumes SessionAuth ran earlier in the chain.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok || !p.IsAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":     "admin access required",
					"errorCode": "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
