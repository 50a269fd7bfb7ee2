package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/deppfellow/qrtrack/internal/config"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// PostgreSQL migrations ship inside the binary.
//
//go:embed migrations/*.sql
var migrations embed.FS

// duckdbSchema bootstraps the DuckDB file. Every statement is
// create-if-absent, so running it on each start is a no-op once applied.
//
// DuckDB has no SERIAL type; ids come from sequences instead.
var duckdbSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS sessions_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGINT PRIMARY KEY DEFAULT nextval('sessions_id_seq'),
		start_point TEXT NOT NULL,
		end_point TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE SEQUENCE IF NOT EXISTS nodes_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS nodes (
		id BIGINT PRIMARY KEY DEFAULT nextval('nodes_id_seq'),
		session_id BIGINT NOT NULL,
		qr_code TEXT NOT NULL,
		"timestamp" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate makes sure the sessions and nodes tables exist.
//
// DuckDB runs duckdbSchema in order. PostgreSQL runs the embedded tern
// migrations on a connection borrowed from the pool; tern records the
// applied version in schema_version.
func Migrate(ctx context.Context, logger *zerolog.Logger, db *Database) error {
	switch db.Driver {
	case config.DriverDuckDB:
		return bootstrapDuckDB(ctx, logger, db)
	case config.DriverPostgres:
		return migratePostgres(ctx, logger, db)
	default:
		return fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}

func bootstrapDuckDB(ctx context.Context, logger *zerolog.Logger, db *Database) error {
	for _, stmt := range duckdbSchema {
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrapping duckdb schema: %w", err)
		}
	}

	logger.Info().Int("statements", len(duckdbSchema)).Msg("database schema ready")
	return nil
}

func migratePostgres(ctx context.Context, logger *zerolog.Logger, db *Database) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring migration connection: %w", err)
	}
	defer conn.Release()

	m, err := tern.NewMigrator(ctx, conn.Conn(), "schema_version")
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
