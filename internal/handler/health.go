package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	started time.Time
	font    string
}

// NewHealthHandler creates a new HealthHandler reporting the loaded font.
func NewHealthHandler(font string) *HealthHandler {
	return &HealthHandler{started: time.Now(), font: font}
}

// Check returns the health status of the server.
func (h *HealthHandler) Check(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"font":   h.font,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
