package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// home handles GET /
func (h *Handlers) home(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/login")
}

// healthCheck handles GET /healthz
func (h *Handlers) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// dbInspector handles GET /db
func (h *Handlers) dbInspector(c echo.Context) error {
	snap, err := h.inspector.Snapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("db inspector failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "Database error: "+err.Error())
	}
	return c.JSONPretty(http.StatusOK, snap, "  ")
}
