package middleware

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/qrtrack/internal/config"
	"github.com/deppfellow/qrtrack/internal/errs"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/deppfellow/qrtrack/internal/sqlerr"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(rateLimit float64, burst int) *server.Server {
	log := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				RateLimit:          rateLimit,
				RateLimitBurst:     burst,
			},
		},
		Logger: &log,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}

func TestContextEnhancer_StoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	s := testServer(0, 0)
	s.Logger = &base

	e := echo.New()
	e.Use(RequestID(), NewContextEnhancer(s).EnhanceContext())
	e.GET("/", func(c echo.Context) error {
		GetLogger(c).Info().Msg("from echo")
		zerolog.Ctx(c.Request().Context()).Info().Msg("from context")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "req-42", entry["request_id"])
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"http error passes through", errs.NewBadRequestError("Start & End required", true, nil, nil, nil), http.StatusBadRequest, "Start & End required"},
		{"echo 404 becomes route not found", echo.ErrNotFound, http.StatusNotFound, "Route not found"},
		{"echo 405 keeps status", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"missing file", fmt.Errorf("open public/index.html: %w", fs.ErrNotExist), http.StatusNotFound, "Route not found"},
		{"no rows", sqlerr.NotFound("sessions", sql.ErrNoRows), http.StatusNotFound, "Session not found"},
		{"storage failure hides cause", errors.New("database is locked"), http.StatusInternalServerError, "Internal Server Error"},
	}

	global := NewGlobalMiddlewares(testServer(0, 0))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/x", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, rec.Body.String(), "locked")
		})
	}
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFromError(http.StatusOK, nil))
	assert.Equal(t, http.StatusTooManyRequests, statusFromError(http.StatusOK, errs.NewTooManyRequestsError("x")))
	assert.Equal(t, http.StatusNotFound, statusFromError(http.StatusOK, echo.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(http.StatusOK, errors.New("boom")))
}

func TestRateLimit_MemoryStore(t *testing.T) {
	s := testServer(1, 2)
	rl := NewRateLimitMiddleware(s)
	require.True(t, rl.Enabled())

	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(rl.Limiter())
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit_DisabledByDefault(t *testing.T) {
	assert.False(t, NewRateLimitMiddleware(testServer(0, 20)).Enabled())
}

func TestRedisRateLimiterStore_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	log := zerolog.Nop()
	store := NewRedisRateLimiterStore(client, 0.5, &log)
	assert.Equal(t, int64(1), store.limit)

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
