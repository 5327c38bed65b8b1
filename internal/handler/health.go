package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes with a bare body, outside the envelope.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
