package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aionify/aionify/internal/metrics"
	"github.com/aionify/aionify/internal/service"
)

// TokenResolver resolves a public-API bearer token to its owning user.
// repository.APITokenRepo implements it.
type TokenResolver interface {
	UserIDByToken(ctx context.Context, token string) (uint64, error)
}

// APITokenAuth returns the public-API authentication filter.  Order
// matters: a blocked IP is rejected with 429 before the header is even
// inspected, so blocked clients cannot probe tokens.  Every failure
// (missing header, unknown token) feeds the limiter; any success clears
// the IP's counter.
func APITokenAuth(limiter *service.FailedAttemptLimiter, tokens TokenResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if limiter.IsBlocked(ip) {
				metrics.BlockedRequests.Inc()
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":     "too many failed attempts, try again later",
					"errorCode": "TOO_MANY_FAILED_ATTEMPTS",
				})
			}

			fail := func() error {
				limiter.RecordFailure(ip)
				metrics.AuthFailures.WithLabelValues("api").Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":     "invalid or missing API token",
					"errorCode": "INVALID_API_TOKEN",
				})
			}

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return fail()
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return fail()
			}

			userID, err := tokens.UserIDByToken(c.Request().Context(), raw)
			if err != nil {
				return fail()
			}

			limiter.Clear(ip)
			setPrincipal(c, Principal{UserID: userID})
			return next(c)
		}
	}
}
