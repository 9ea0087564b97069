package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acordex/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, "openai", cfg.Organizer.Provider)
	assert.Equal(t, 60*time.Second, cfg.Organizer.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Artifacts.Enabled)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ACORDEX_DB_DRIVER", "sqlite")
	t.Setenv("ACORDEX_DB_SQLITE_PATH", "/tmp/rules.db")
	t.Setenv("ACORDEX_ORGANIZER_PROVIDER", "claude")
	t.Setenv("ACORDEX_ORGANIZER_TIMEOUT_SECS", "5")
	t.Setenv("ACORDEX_CACHE_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "sqlite:///tmp/rules.db", cfg.DB.MigrationURL())
	assert.Contains(t, cfg.DB.DSN(), "file:/tmp/rules.db")
	assert.Contains(t, cfg.DB.DSN(), "_txlock=immediate")
	assert.Equal(t, "claude", cfg.Organizer.Provider)
	assert.Equal(t, 5*time.Second, cfg.Organizer.Timeout())
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9999")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Port)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("ACORDEX_DB_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveOrganizerTimeout(t *testing.T) {
	t.Setenv("ACORDEX_ORGANIZER_TIMEOUT_SECS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_PostgresDSN(t *testing.T) {
	db := config.DBConfig{Driver: "pgx", User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
	assert.Equal(t, db.DSN(), db.MigrationURL())
}
