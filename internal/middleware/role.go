package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
)

// RequireRole gates a route to principals whose role is in the allowed set.
// It must be composed after Authenticate: a request that reaches it without
// an attached principal is rejected as unauthenticated, not forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return apperr.New(apperr.Unauthenticated, "Authentication token required.")
			}
			if !allowed[p.Role] {
				return apperr.New(apperr.Forbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
