package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithDatabaseURL(t *testing.T) {
	t.Setenv("ROLLCALL_DATABASE__URL", "postgres://localhost:5432/rollcall")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10*time.Second, cfg.Delivery.Timeout)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, 100, cfg.Notifications.FeedCapacity)
	assert.True(t, cfg.Notifications.StartOnline)
}

func TestLoad_MissingDatabaseURLFailsValidation(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9000"
  read_timeout: 5s
database:
  url: postgres://db:5432/rollcall
  max_open_conns: 20
log:
  level: debug
  format: text
delivery:
  email_url: https://delivery.example.com/email
  sms_url: https://delivery.example.com/sms
  drain_url: https://delivery.example.com/drain
  timeout: 3s
  sms_rate_limit: 0.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://delivery.example.com/sms", cfg.Delivery.SMSURL)
	assert.Equal(t, 3*time.Second, cfg.Delivery.Timeout)
	assert.Equal(t, 0.5, cfg.Delivery.SMSRateLimit)

	// Untouched fields keep their defaults
	assert.Equal(t, "9090", cfg.Server.MetricsPort)
	assert.Equal(t, 5, cfg.Database.ConnectAttempts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9000"
database:
  url: postgres://db:5432/rollcall
`)
	t.Setenv("ROLLCALL_SERVER__PORT", "7000")
	t.Setenv("ROLLCALL_LOG__LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_InvalidLogLevelRejected(t *testing.T) {
	t.Setenv("ROLLCALL_DATABASE__URL", "postgres://localhost:5432/rollcall")
	t.Setenv("ROLLCALL_LOG__LEVEL", "loud")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoad_MissingFileIsSkipped(t *testing.T) {
	t.Setenv("ROLLCALL_DATABASE__URL", "postgres://localhost:5432/rollcall")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}
