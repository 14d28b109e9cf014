package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
)

// registerAuth wires the account endpoints. Only login sits behind the rate
// limiter and only logout needs a bearer token.
func registerAuth(e *echo.Echo, h *handlers) {
	a := h.auth
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.GET("/verify/:token", a.Verify)
	g.POST("/login", a.Login, h.loginLimit)
	g.POST("/logout", middleware.WithIdentity(a.Logout), h.authn)
	g.POST("/password/forgot", a.ForgotPassword)
	g.POST("/password/reset", a.ResetPassword)

	g.GET("/google", a.GoogleStart)
	g.GET("/google/callback", a.GoogleCallback)
	g.POST("/google/exchange", a.GoogleExchange)
}
