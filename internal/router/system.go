package router

import (
	"github.com/deppfellow/qrtrack/internal/handler"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerSystemRoutes registers endpoints outside the tracking domain:
// liveness, readiness, metrics and API docs.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/health", h.Health.Health)
	r.GET("/status", h.Health.CheckHealth)

	r.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// openapi.json and assets for the docs page.
	r.Static("/static", handler.DocsDir)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
