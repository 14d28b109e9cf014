package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
)

func registerParticipants(e *echo.Echo, h *handlers) {
	p := h.participants
	g := e.Group("/participants")

	// static /me segments take precedence over /:id in echo's router
	g.GET("/me", middleware.WithIdentity(p.Mine), h.anyRole...)
	g.PUT("/me/:id", middleware.WithIdentity(p.UpdateMine), h.anyRole...)
	g.PATCH("/me/:id/cancel", middleware.WithIdentity(p.CancelMine), h.anyRole...)

	g.GET("", p.List, h.adminOnly...)
	g.GET("/:id", p.Get, h.adminOnly...)
	g.POST("", p.Create, h.adminOnly...)
	g.PUT("/:id", p.Update, h.adminOnly...)
	g.DELETE("/:id", p.Delete, h.adminOnly...)
}
