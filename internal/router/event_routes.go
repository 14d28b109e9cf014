package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/middleware"
)

// registerEvents wires the public catalogue (served through the response
// cache) and the admin writes that purge it.
func registerEvents(e *echo.Echo, h *handlers) {
	ev := h.events
	g := e.Group("/events")

	cached := h.cache.Middleware()
	g.GET("", ev.List, cached)
	g.GET("/:id", ev.Get, cached)
	g.GET("/:id/categories", ev.ListCategories, cached)

	admin := with(h.adminOnly, h.cache.Invalidate())
	g.POST("", ev.Create, admin...)
	g.PUT("/:id", ev.Update, admin...)
	g.DELETE("/:id", ev.Delete, admin...)
	g.POST("/:id/categories", ev.CreateCategory, admin...)
	g.PUT("/categories/:id", ev.UpdateCategory, admin...)
	g.DELETE("/categories/:id", ev.DeleteCategory, admin...)

	g.POST("/:id/register", middleware.WithIdentity(h.participants.Register), h.anyRole...)
}
