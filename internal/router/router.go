// Package router builds the echo instance: JSON serializer, error
// handler, middleware chain and every route.
package router

import (
	"net/http"

	"github.com/deppfellow/qrtrack/internal/handler"
	"github.com/deppfellow/qrtrack/internal/middleware"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// NewRouter returns the fully wired echo instance.
//
// Middleware order matters: the request id must exist before the request
// logger is built, and the logger must exist before anything can fail.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.JSONSerializer = JSONSerializer{}
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Metrics.Record(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	if middlewares.RateLimit.Enabled() {
		router.Use(middlewares.RateLimit.Limiter())
	}

	router.Use(spaFallback(s.Config.Server.StaticDir))

	registerSystemRoutes(router, h)
	registerTrackingRoutes(router, h)

	return router
}

// registerTrackingRoutes registers the session and node endpoints.
func registerTrackingRoutes(r *echo.Echo, h *handler.Handlers) {
	r.POST("/start-session", handler.Handle(h.Session.Handler, h.Session.StartSession, http.StatusOK))
	r.POST("/add-node", handler.Handle(h.Node.Handler, h.Node.AddNode, http.StatusOK))

	sessions := r.Group("/sessions")
	sessions.GET("/:id", handler.Handle(h.Session.Handler, h.Session.GetSession, http.StatusOK))
	sessions.GET("/:id/nodes", handler.Handle(h.Node.Handler, h.Node.ListNodes, http.StatusOK))
}

// spaFallback serves files from dir and answers unmatched GET and HEAD
// requests with dir/index.html. Routes that exist always win, and other
// methods keep the JSON "Route not found" error.
func spaFallback(dir string) echo.MiddlewareFunc {
	return echoMiddleware.StaticWithConfig(echoMiddleware.StaticConfig{
		Root:  dir,
		Index: "index.html",
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			m := c.Request().Method
			return m != http.MethodGet && m != http.MethodHead
		},
	})
}
