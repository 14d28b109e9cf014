package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/model"
)

// registerUsers wires the caller's own profile and address book plus the
// superadmin role endpoint.
func registerUsers(e *echo.Echo, h *handlers) {
	u := h.users
	g := e.Group("/users")
	self := h.anyRole

	g.GET("/profile", middleware.WithIdentity(u.GetProfile), self...)
	g.PUT("/profile", middleware.WithIdentity(u.UpdateProfile), self...)
	g.PATCH("/profile/picture", middleware.WithIdentity(u.UpdatePicture), self...)
	g.PATCH("/profile/cover", middleware.WithIdentity(u.UpdateCover), self...)

	g.GET("/address", middleware.WithIdentity(u.ListAddresses), self...)
	g.POST("/address", middleware.WithIdentity(u.CreateAddress), self...)
	g.GET("/address/:id", middleware.WithIdentity(u.GetAddress), self...)
	g.PUT("/address/:id", middleware.WithIdentity(u.UpdateAddress), self...)
	g.DELETE("/address/:id", middleware.WithIdentity(u.DeleteAddress), self...)
	g.PATCH("/address/:id/primary", middleware.WithIdentity(u.SetPrimaryAddress), self...)

	g.PATCH("/:id/role", middleware.WithIdentity(u.UpdateRole), h.authn, middleware.RequireRole(model.RoleSuperAdmin))
}
