package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads; viper treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "HOST", "LOG_LEVEL", "GIN_MODE", "BODY_TIMEOUT", "MAX_BODY_BYTES",
		"SHUTDOWN_TIMEOUT", "READ_HEADER_TIMEOUT", "METRICS_ENABLED", "METRICS_PATH", "TRACING_ENABLED", "TRACING_SERVICE_NAME"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.BodyTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("BODY_TIMEOUT", "250ms")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.BodyTimeout)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "usersapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\nlog_level: debug\ntracing:\n  enabled: true\n  service_name: users-test\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "users-test", cfg.Tracing.ServiceName)
}

func TestLoadConfigEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "usersapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\n"), 0o600))
	t.Setenv("PORT", "5000")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "70000")
	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "validation failed")
}

func TestValidateRejectsBadLevel(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())
}
