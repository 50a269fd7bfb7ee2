package middleware

import (
	"time"

	"github.com/deppfellow/qrtrack/internal/metrics"
	"github.com/labstack/echo/v4"
)

// unmatchedRoute labels requests that matched no route, so raw paths never
// become label values.
const unmatchedRoute = "unmatched"

type MetricsMiddleware struct{}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

// Record observes request count, latency and in-flight requests per route.
func (m *MetricsMiddleware) Record() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			err := next(c)

			route := c.Path()
			if route == "" || route == "/*" {
				route = unmatchedRoute
			}
			status := statusFromError(c.Response().Status, err)
			metrics.RecordAPIRequest(c.Request().Method, route, status, time.Since(start))

			return err
		}
	}
}
