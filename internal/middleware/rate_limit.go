package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/deppfellow/qrtrack/internal/errs"
	"github.com/deppfellow/qrtrack/internal/metrics"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// memoryStoreExpiry drops idle per-IP limiters from the memory store.
	memoryStoreExpiry = 3 * time.Minute

	// redisWindow is the fixed window the Redis store counts requests in.
	redisWindow = time.Second

	// redisTimeout bounds a single Redis round trip.
	redisTimeout = 250 * time.Millisecond

	redisKeyPrefix = "qrtrack:ratelimit:"
)

// RateLimitMiddleware enforces server.rate_limit requests per second per
// client IP. Counters live in Redis when configured so every replica shares
// them; otherwise each process keeps token buckets in memory.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Enabled reports whether a rate is configured.
func (r *RateLimitMiddleware) Enabled() bool {
	return r.server.Config.Server.RateLimit > 0
}

// Limiter returns the echo rate limiter backed by Store.
func (r *RateLimitMiddleware) Limiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.Store(),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError("Unable to identify client", false, nil, nil, nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("client", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests")
		},
	})
}

// Store picks the Redis store when a client exists, else the memory store.
func (r *RateLimitMiddleware) Store() middleware.RateLimiterStore {
	cfg := r.server.Config.Server

	if r.server.Redis != nil {
		return NewRedisRateLimiterStore(r.server.Redis, cfg.RateLimit, r.server.Logger)
	}

	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RateLimit),
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: memoryStoreExpiry,
	})
}

// RecordRateLimitHit counts a rejected request and reports it to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	metrics.RateLimitedRequests.Inc()

	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimiterStore counts requests per identifier in one-second
// windows with INCR and EXPIRE.
//
// Redis failures let the request through: losing the limiter is better
// than losing the API.
type RedisRateLimiterStore struct {
	client *redis.Client
	limit  int64
	log    *zerolog.Logger
	now    func() time.Time
}

// NewRedisRateLimiterStore allows ceil(perSecond) requests per window, at
// least one.
func NewRedisRateLimiterStore(client *redis.Client, perSecond float64, log *zerolog.Logger) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		client: client,
		limit:  int64(math.Max(1, math.Ceil(perSecond))),
		log:    log,
		now:    time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	window := s.now().Truncate(redisWindow).Unix()
	key := fmt.Sprintf("%s%s:%d", redisKeyPrefix, identifier, window)

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*redisWindow)
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("rate limiter store unavailable, allowing request")
		return true, nil
	}

	return incr.Val() <= s.limit, nil
}
