package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iliyamo/event-registration/internal/response"
)

// Health reports whether the service and its database are reachable. Load
// balancers and monitoring systems poll it.
func Health(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			return response.Fail(c, http.StatusServiceUnavailable, "Database unavailable")
		}
		return response.OK(c, echo.Map{"status": "ok", "timestamp": time.Now().UTC()})
	}
}
