// Package config manages the runtime configuration of the tracker.
//
// It reads defaults, an optional YAML file and environment variables
// (including a `.env` file), loads them into structured Go types and
// validates them so the process fails fast on bad or missing values.
//
// Responsibilities:
//   - Provide defaults that make a bare `qrtrack` binary runnable locally.
//   - Layer optional file and environment overrides on top of the defaults.
//   - Validate the merged result before anything else is constructed.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file (if present) into the process
	// environment before any provider below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

/*
	Loading order (later layers win):

	1. defaultConfig() through the structs provider
	2. a YAML file: $QRTRACK_CONFIG_PATH, or ./config.yaml when it exists
	3. PORT, the conventional platform port override
	4. QRTRACK_* environment variables

	Env keys drop the prefix, are lowercased, and use "__" for nesting:
	  QRTRACK_SERVER__PORT        -> server.port
	  QRTRACK_DATABASE__DRIVER    -> database.driver
	  QRTRACK_OBSERVABILITY__LOGGING__LEVEL -> observability.logging.level
*/

const (
	// EnvPrefix is the prefix every application environment variable carries.
	EnvPrefix = "QRTRACK_"

	// ConfigPathEnvVar points at an optional YAML config file.
	ConfigPathEnvVar = "QRTRACK_CONFIG_PATH"

	// DefaultConfigPath is read when ConfigPathEnvVar is unset and the file exists.
	DefaultConfigPath = "config.yaml"

	// DefaultPort is used when neither PORT nor QRTRACK_SERVER__PORT is set.
	DefaultPort = "3000"
)

// Supported storage drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags map flattened keys to fields.
// The `validate:"..."` tags are enforced by go-playground/validator after loading.
type Config struct {
	Primary       Primary             `koanf:"primary" validate:"required"`
	Server        ServerConfig        `koanf:"server" validate:"required"`
	Database      DatabaseConfig      `koanf:"database" validate:"required"`
	Redis         RedisConfig         `koanf:"redis"`
	Observability ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// It tags logs/traces and switches a few behaviors (SQL tracing in "local").
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// StaticDir holds the prebuilt frontend. Unmatched GET routes fall back
	// to StaticDir/index.html.
	StaticDir string `koanf:"static_dir" validate:"required"`

	// RateLimit is the allowed requests per second per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`

	// RateLimitBurst is the burst size of the in-memory limiter.
	RateLimitBurst int `koanf:"rate_limit_burst" validate:"min=0"`
}

// DatabaseConfig selects the storage engine and carries its connection settings.
//
// The DuckDB driver stores everything in a single local file (Path).
// The Postgres driver connects to a server and needs the Host..SSLMode block.
type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=duckdb postgres"`

	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	Host     string `koanf:"host" validate:"required_if=Driver postgres"`
	Port     int    `koanf:"port" validate:"required_if=Driver postgres"`
	User     string `koanf:"user" validate:"required_if=Driver postgres"`
	Password string `koanf:"password"`
	Name     string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode  string `koanf:"ssl_mode" validate:"required_if=Driver postgres"`

	// Pool tuning. Lifetimes are whole seconds.
	MaxOpenConns    int `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int `koanf:"conn_max_idle_time" validate:"min=0"`
}

// RedisConfig contains Redis connection details.
//
// Redis is optional. When Address is empty the rate limiter keeps its
// counters in memory and the status endpoint skips the Redis check.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// defaultConfig returns the configuration the process runs with when nothing
// is overridden: a DuckDB file next to the binary, port 3000, permissive CORS.
func defaultConfig() *Config {
	return &Config{
		Primary: Primary{
			Env: "development",
		},
		Server: ServerConfig{
			Port:               DefaultPort,
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			StaticDir:          "public",
			RateLimit:          0,
			RateLimitBurst:     20,
		},
		Database: DatabaseConfig{
			Driver:          DriverDuckDB,
			Path:            "database.db",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 3600,
			ConnMaxIdleTime: 300,
		},
		Observability: *DefaultObservabilityConfig(),
	}
}

// envKey maps QRTRACK_SERVER__PORT to server.port.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// listPaths are list fields that arrive from the environment as
// comma-separated strings.
var listPaths = []string{
	"server.cors_allowed_origins",
	"observability.health_checks.checks",
}

// splitListFields turns comma-separated string values into string slices.
// Values that are already lists (defaults, YAML) are left alone.
func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(raw, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}

		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig loads, merges and validates the configuration.
//
// Unlike a log-and-exit loader it returns every failure to the caller,
// so the entry point decides how to die and tests can assert on errors.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults.
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// Layer 2: optional YAML file.
	path := os.Getenv(ConfigPathEnvVar)
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: PORT. The callback drops every other variable matching the prefix.
	err := k.Load(env.Provider("PORT", ".", func(s string) string {
		if s == "PORT" {
			return "server.port"
		}
		return ""
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load PORT: %w", err)
	}

	// Layer 4: prefixed environment variables.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate runs the struct-tag validator and the observability rules.
//
// Observability service name and environment are forced from the primary
// block so every log line and trace carries the same labels.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config validation failed: %s failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}

	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
