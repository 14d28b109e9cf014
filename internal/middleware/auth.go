package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/response"
	"github.com/iliyamo/event-registration/internal/service"
)

// TokenChecker verifies session tokens and their revocation records.
type TokenChecker interface {
	VerifyToken(raw string) *service.Claims
	IsActive(ctx context.Context, userID uint64, token string) (bool, error)
}

// UserFinder loads the account behind a verified token.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// Authenticate resolves the bearer token into an Identity. A request passes
// only when the header is present and well formed, the signature and expiry
// are valid, the token is the user's current access record and the user
// still exists. Every rejection is a 401.
func Authenticate(tokens TokenChecker, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.TrimSpace(auth) == "" {
				return response.Fail(c, http.StatusUnauthorized, "No token provided")
			}
			scheme, raw, ok := strings.Cut(auth, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" || strings.Contains(raw, " ") {
				return response.Fail(c, http.StatusUnauthorized, "Invalid token format")
			}

			claims := tokens.VerifyToken(raw)
			if claims == nil {
				return response.Fail(c, http.StatusUnauthorized, "Invalid token")
			}

			ctx := c.Request().Context()
			active, err := tokens.IsActive(ctx, claims.UserID, raw)
			if err != nil {
				return err
			}
			if !active {
				return response.Fail(c, http.StatusUnauthorized, "Token revoked or expired")
			}

			u, err := users.GetByID(ctx, claims.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				return response.Fail(c, http.StatusUnauthorized, "User not found")
			}
			if err != nil {
				return err
			}

			c.Set(identityKey, &Identity{User: u, Token: raw})
			return next(c)
		}
	}
}
