// Package middleware holds the echo middleware shared by every route.
//
// It covers request ids, request-scoped logging, New Relic tracing,
// Prometheus request metrics, CORS, rate limiting, panic recovery and the
// global error handler that turns every error into an errs.HTTPError body.
package middleware
