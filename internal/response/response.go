// Package response writes the JSON envelope shared by every endpoint:
//
//	{"success": true, "data": ..., "message": "..."}
//	{"success": false, "error": "...", "statusCode": 400, "details": [...]}
package response

import "github.com/labstack/echo/v4"

// Body is the success envelope.
type Body struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error is the failure envelope.
type Error struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
}

// Success writes data (and an optional message) with the given status.
func Success(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, Body{Success: true, Data: data, Message: message})
}

// OK is Success with 200 and no message.
func OK(c echo.Context, data any) error {
	return Success(c, 200, data, "")
}

// Fail writes the error envelope.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Error{Error: message, StatusCode: status})
}

// FailWithDetails writes the error envelope with extra detail, such as the
// full list of validation messages.
func FailWithDetails(c echo.Context, status int, message string, details any) error {
	return c.JSON(status, Error{Error: message, StatusCode: status, Details: details})
}
