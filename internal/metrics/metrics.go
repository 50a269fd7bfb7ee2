// Package metrics exposes Prometheus instrumentation for the tracker.
//
// Collectors register on the default registry at init through promauto,
// and GET /metrics serves them with promhttp.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// errorTypeMaxLen bounds the error_type label to keep cardinality in check.
const errorTypeMaxLen = 50

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrtrack_db_query_duration_seconds",
			Help:    "Duration of storage statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrtrack_db_query_errors_total",
			Help: "Total number of failed storage statements",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Tracking
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrtrack_sessions_created_total",
			Help: "Total number of tracking sessions created",
		},
	)

	NodesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrtrack_nodes_recorded_total",
			Help: "Total number of QR scan nodes recorded",
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrtrack_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrtrack_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrtrack_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrtrack_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// RecordDBQuery records one storage statement.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > errorTypeMaxLen {
			errorType = errorType[:errorTypeMaxLen]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records a finished API request. endpoint is the route
// pattern, not the raw path.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
