package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/response"
)

// ErrorHandler is the terminal echo error handler. Validation failures become
// 400 with details, echo errors keep their status and anything else is a
// logged 500.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var (
			ve *ValidationError
			he *echo.HTTPError
		)
		switch {
		case errors.As(err, &ve):
			err = response.FailWithDetails(c, http.StatusBadRequest, ve.Error(), ve.Messages)
		case errors.As(err, &he):
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
			if he.Code == http.StatusNotFound && msg == "Not Found" {
				msg = "Route not found"
			}
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(he.Code)
			} else {
				err = response.Fail(c, he.Code, msg)
			}
		default:
			log.Error("unhandled error",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
			err = response.Fail(c, http.StatusInternalServerError, "Internal Server Error")
		}
		if err != nil {
			log.Error("failed to write error response", "error", err)
		}
	}
}
