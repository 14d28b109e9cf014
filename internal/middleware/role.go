package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/response"
)

// RequireRole returns a middleware that admits only callers whose role is
// in roles. It must run after Authenticate. There is no role hierarchy:
// every route lists the roles it accepts.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return response.Fail(c, http.StatusUnauthorized, "Authentication required")
			}
			if id.User.Role == "" {
				return response.Fail(c, http.StatusInternalServerError, "Role information is missing")
			}
			if !allowed[id.User.Role] {
				return response.Fail(c, http.StatusForbidden, "You don't have permission to access this resource")
			}
			return next(c)
		}
	}
}
