package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "academia.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Console.MaxLoginAttempts)
	assert.Equal(t, int64(1), cfg.Web.AcademyID)
	assert.Equal(t, "admin", cfg.Bootstrap.AdminUsername)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.UsesDefaultSecret())
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "PostgreSQL")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("WEB_ACADEMY_ID", "7")
	t.Setenv("CONSOLE_MAX_LOGIN_ATTEMPTS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.False(t, cfg.Session.UsesDefaultSecret())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, int64(7), cfg.Web.AcademyID)
	assert.Equal(t, 3, cfg.Console.MaxLoginAttempts)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
