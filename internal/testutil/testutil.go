// Package testutil builds throwaway dependencies for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/deppfellow/qrtrack/internal/config"
	"github.com/deppfellow/qrtrack/internal/database"
	"github.com/deppfellow/qrtrack/internal/logger"
	"github.com/deppfellow/qrtrack/internal/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Config returns a valid configuration for an in-memory DuckDB store with
// rate limiting and health checks tuned for tests.
func Config(t *testing.T) *config.Config {
	t.Helper()

	obs := config.DefaultObservabilityConfig()
	obs.Environment = "test"
	obs.HealthChecks.Checks = []string{"database"}

	return &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               config.DefaultPort,
			CORSAllowedOrigins: []string{"*"},
			StaticDir:          t.TempDir(),
			RateLimitBurst:     20,
		},
		Database: config.DatabaseConfig{
			Driver: config.DriverDuckDB,
		},
		Observability: *obs,
	}
}

// NewServer returns a Server backed by a migrated in-memory DuckDB. The
// database is closed when the test ends.
func NewServer(t *testing.T, cfg *config.Config) *server.Server {
	t.Helper()

	if cfg == nil {
		cfg = Config(t)
	}

	log := zerolog.Nop()
	db, err := database.OpenDuckDB("", &log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), &log, db))

	return &server.Server{
		Config:        cfg,
		Logger:        &log,
		LoggerService: logger.NewLoggerService(&cfg.Observability),
		DB:            db,
	}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, s *server.Server, table string) int64 {
	t.Helper()

	var n int64
	err := s.DB.DB.QueryRowContext(context.Background(), fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n)
	require.NoError(t, err)
	return n
}
