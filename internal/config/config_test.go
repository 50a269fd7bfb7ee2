package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so a stray config.yaml
// or .env in the package directory cannot leak into LoadConfig.
func chdirTemp(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DriverDuckDB, cfg.Database.Driver)
	assert.Equal(t, "database.db", cfg.Database.Path)
	assert.Equal(t, "public", cfg.Server.StaticDir)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
	assert.Equal(t, 5*time.Second, cfg.Observability.HealthChecks.Timeout)
}

func TestLoadConfig_PortOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfig_PrefixedEnvWinsOverPort(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "8080")
	t.Setenv("QRTRACK_SERVER__PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfig_NestedEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QRTRACK_PRIMARY__ENV", "production")
	t.Setenv("QRTRACK_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("QRTRACK_OBSERVABILITY__LOGGING__LEVEL", "warn")
	t.Setenv("QRTRACK_OBSERVABILITY__HEALTH_CHECKS__TIMEOUT", "2s")
	t.Setenv("QRTRACK_REDIS__ADDRESS", "localhost:6379")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Primary.Env)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "warn", cfg.Observability.GetLogLevel())
	assert.Equal(t, 2*time.Second, cfg.Observability.HealthChecks.Timeout)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadConfig_ChecksFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QRTRACK_OBSERVABILITY__HEALTH_CHECKS__CHECKS", "database")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"database"}, cfg.Observability.HealthChecks.Checks)
	assert.False(t, cfg.Observability.ShouldCheck("redis"))
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	chdirTemp(t)

	path := filepath.Join(t.TempDir(), "qrtrack.yaml")
	content := []byte("server:\n  port: \"4000\"\n  static_dir: web\ndatabase:\n  path: tracks.db\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "web", cfg.Server.StaticDir)
	assert.Equal(t, "tracks.db", cfg.Database.Path)
}

func TestLoadConfig_PostgresRequiresConnectionSettings(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QRTRACK_DATABASE__DRIVER", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required_if")
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QRTRACK_DATABASE__DRIVER", "sqlite")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoadConfig_RejectsBadLogLevel(t *testing.T) {
	chdirTemp(t)
	t.Setenv("QRTRACK_OBSERVABILITY__LOGGING__LEVEL", "verbose")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		env   string
		level string
		want  string
	}{
		{"explicit level wins", "production", "error", "error"},
		{"production default", "production", "", "info"},
		{"development default", "development", "", "debug"},
		{"local default", "local", "", "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := DefaultObservabilityConfig()
			c.Environment = tt.env
			c.Logging.Level = tt.level
			assert.Equal(t, tt.want, c.GetLogLevel())
		})
	}
}

func TestObservabilityConfig_ShouldCheck(t *testing.T) {
	t.Parallel()

	c := DefaultObservabilityConfig()
	c.HealthChecks.Checks = []string{"database"}

	assert.True(t, c.ShouldCheck("database"))
	assert.False(t, c.ShouldCheck("redis"))

	c.HealthChecks.Enabled = false
	assert.False(t, c.ShouldCheck("database"))
}
