// Package response provides helpers for consistent API responses.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error codes carried in the "code" field of error responses.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidSettings = "INVALID_SETTINGS"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
)

// Success sends a successful JSON response with the given data.
// The response always carries "error": false, even if data sets it.
func Success(c echo.Context, data map[string]interface{}) error {
	resp := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		resp[k] = v
	}
	resp["error"] = false

	return c.JSON(http.StatusOK, resp)
}

// Error sends an error JSON response with the given status code and message.
func Error(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}

// ErrorWithCode sends an error response with a specific error code.
// Clients switch on the code, the message is for humans.
func ErrorWithCode(c echo.Context, statusCode int, code string, message string) error {
	return c.JSON(statusCode, map[string]interface{}{
		"error":   true,
		"code":    code,
		"message": message,
	})
}
