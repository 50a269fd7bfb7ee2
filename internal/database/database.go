// Package database opens the relational store behind the tracker.
//
// Two engines are supported and both are exposed as a *sql.DB so the
// repositories carry one set of SQL statements:
//
//   - DuckDB (default): a single local file, opened with duckdb-go.
//   - PostgreSQL: a pgx connection pool (pgxpool) wrapped by pgx's stdlib
//     adapter, with query tracing (pgx tracelog) and optional New Relic
//     instrumentation (nrpgx5).
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/qrtrack/internal/config"
	loggerConfig "github.com/deppfellow/qrtrack/internal/logger"
	"github.com/deppfellow/qrtrack/internal/metrics"
	_ "github.com/duckdb/duckdb-go/v2"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database is the process-wide storage handle.
//
// DB is what repositories query. Pool is only set for PostgreSQL and is
// used for migrations; closing the Database closes both.
type Database struct {
	DB     *sql.DB
	Pool   *pgxpool.Pool
	Driver string

	log                *zerolog.Logger
	slowQueryThreshold time.Duration
}

// multiTracer fans pgx query tracing out to several tracers.
//
// pgx has a single Tracer slot in ConnConfig; this lets New Relic and the
// local SQL logger run side by side.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DatabasePingTimeout is how long startup waits for the first ping.
const DatabasePingTimeout = 10 * time.Second

// New opens the configured storage engine and pings it.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	var (
		db  *Database
		err error
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err = newPostgres(cfg, logger, loggerService)
	case config.DriverDuckDB:
		db, err = OpenDuckDB(cfg.Database.Path, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	db.slowQueryThreshold = cfg.Observability.Logging.SlowQueryThreshold

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Str("driver", db.Driver).Msg("connected to the database")
	return db, nil
}

// OpenDuckDB opens a DuckDB database file. An empty path opens a private
// in-memory database.
//
// database/sql shares one DuckDB instance across its connections, so every
// connection of the returned handle sees the same tables.
func OpenDuckDB(path string, logger *zerolog.Logger) (*Database, error) {
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb database: %w", err)
	}

	return &Database{
		DB:     conn,
		Driver: config.DriverDuckDB,
		log:    logger,
	}, nil
}

// dsn builds the PostgreSQL URL. The password is escaped so characters
// like ':' or '@' cannot break it.
func dsn(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

func newPostgres(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(min(cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns))
	poolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	poolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	if loggerService != nil && loggerService.GetApplication() != nil {
		poolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL statement logging is noisy, so only the local environment gets it.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		}

		if poolConfig.ConnConfig.Tracer != nil {
			poolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{poolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			poolConfig.ConnConfig.Tracer = localTracer
		}
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	return &Database{
		DB:     stdlib.OpenDBFromPool(pool),
		Pool:   pool,
		Driver: config.DriverPostgres,
		log:    logger,
	}, nil
}

// Ping checks that the store answers.
func (db *Database) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// Observe records a finished statement in metrics and logs it when it was
// slower than the configured threshold.
func (db *Database) Observe(operation, table string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.RecordDBQuery(operation, table, elapsed, err)

	if db.slowQueryThreshold > 0 && elapsed > db.slowQueryThreshold {
		db.log.Warn().
			Str("operation", operation).
			Str("table", table).
			Dur("duration", elapsed).
			Msg("slow query")
	}
}

// Close releases the handle and, for PostgreSQL, the pool under it.
func (db *Database) Close() error {
	db.log.Info().Str("driver", db.Driver).Msg("closing database connection")

	err := db.DB.Close()
	if db.Pool != nil {
		db.Pool.Close()
	}
	return err
}
