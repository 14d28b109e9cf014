package middleware

// identity.go defines the authenticated-request type produced by
// Authenticate and the helpers handlers use to read it back.

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/response"
)

const identityKey = "identity"

// Identity is attached to the request once the bearer token has been
// verified against its signature, its access record and the user table.
type Identity struct {
	User  *model.User
	Token string
}

// IdentityFrom returns the identity attached by Authenticate, if any.
func IdentityFrom(c echo.Context) (*Identity, bool) {
	id, ok := c.Get(identityKey).(*Identity)
	return id, ok && id != nil && id.User != nil
}

// WithIdentity adapts a handler that needs the caller's identity. Requests
// that reach it unauthenticated get a 401.
func WithIdentity(fn func(c echo.Context, id *Identity) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return response.Fail(c, http.StatusUnauthorized, "Authentication required")
		}
		return fn(c, id)
	}
}

// userID returns the caller's id as a string, or "anon" for guests. It is
// used to build rate limit keys.
func userID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return strconv.FormatUint(id.User.ID, 10)
	}
	return "anon"
}
