package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	// Module config
	assert.Equal(t, "cvrf-review", cfg.Module.Name)
	assert.True(t, cfg.Module.Streaming)
	assert.Zero(t, cfg.Module.Timeout)
	assert.Equal(t, 4, cfg.Module.MaxConcurrent)
	assert.Equal(t, DefaultNoOutputMessage, cfg.Module.NoOutput)

	// Render and logging config
	assert.True(t, cfg.Render.Sanitize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9000",
		"HOST":                  "127.0.0.1",
		"CORS_ORIGINS":          "https://a.example,https://b.example",
		"MODULE_URL":            "file:///srv/main.wasm",
		"MODULE_NAME":           "advisories",
		"MODULE_STREAMING":      "false",
		"MODULE_TIMEOUT":        "30s",
		"MODULE_MAX_CONCURRENT": "0",
		"MODULE_NO_OUTPUT":      "nothing",
		"RENDER_SANITIZE":       "false",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"RATE_LIMIT_ENABLED":    "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "file:///srv/main.wasm", cfg.Module.URL)
	assert.Equal(t, "advisories", cfg.Module.Name)
	assert.False(t, cfg.Module.Streaming)
	assert.Equal(t, 30*time.Second, cfg.Module.Timeout)
	assert.Equal(t, 1, cfg.Module.MaxConcurrent, "non-positive concurrency is clamped")
	assert.Equal(t, "nothing", cfg.Module.NoOutput)
	assert.False(t, cfg.Render.Sanitize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("MODULE_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}
