package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.True(t, cfg.Store.Watch)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("STORE_WATCH", "false")
	t.Setenv("RATE_LIMIT_MAX", "10")
	t.Setenv("PUBLIC_BASE_URL", "https://art.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Store.Timeout)
	assert.False(t, cfg.Store.Watch)
	assert.Equal(t, 10, cfg.RateLimit.Max)
	assert.Equal(t, "https://art.example.com", cfg.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_MAX", "-3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Store.Timeout)
	assert.Equal(t, 5, cfg.RateLimit.Max)
}

func TestLoad_PanicsWithoutJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	assert.Panics(t, func() { _, _ = Load() })
}
