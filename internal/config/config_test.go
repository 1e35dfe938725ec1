package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "najdeno.sqlite3", cfg.DB)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "", cfg.PublicURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 30, cfg.RateLimit.MessagesPerMinute)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, 10*time.Minute, cfg.Handshake.CacheTTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NAJDENO_ADDR", ":9090")
	t.Setenv("NAJDENO_LOG_LEVEL", "debug")
	t.Setenv("NAJDENO_RATELIMIT_MESSAGES_PER_MINUTE", "60")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60, cfg.RateLimit.MessagesPerMinute)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "najdeno.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
public_url: https://najdeno.example/
log:
  file: /var/log/najdeno.log
handshake:
  cache_ttl: 1m
`), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "https://najdeno.example", cfg.PublicURL)
	assert.Equal(t, "/var/log/najdeno.log", cfg.Log.File)
	assert.Equal(t, time.Minute, cfg.Handshake.CacheTTL)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v := New()
	v.Set(KeyPublicURL, "najdeno.example")
	v.Set(KeyHandshakeCacheTTL, "0s")

	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public_url")
	assert.Contains(t, err.Error(), "cache_ttl")
}

func TestDisplayTimeZone(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, time.Local, cfg.Display.Location)

	v := New()
	v.Set(KeyTimeZone, "UTC")
	cfg, err = Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Display.Location.String())

	v = New()
	v.Set(KeyTimeZone, "Mars/Olympus_Mons")
	_, err = Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.time_zone")
}
