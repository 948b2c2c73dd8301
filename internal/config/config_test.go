package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daleel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.RateLimit.Public.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Auth.Window.D())
	assert.Equal(t, "daleel-session", cfg.Session.CookieName)
	assert.False(t, cfg.Production())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
env: production
server:
  addr: ":9090"
rateLimit:
  auth:
    max: 3
    window: 30m
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.Server.FrontendOrigin)
	assert.Equal(t, 3, cfg.RateLimit.Auth.Max)
	assert.Equal(t, 30*time.Minute, cfg.RateLimit.Auth.Window.D())
	assert.Equal(t, 30, cfg.RateLimit.Admin.Max)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	_, err := Load(writeConfig(t, "sever:\n  addr: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_BadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "session:\n  ttl: forever\n"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DALEEL_DB_PATH", "/var/lib/daleel/daleel.db")
	t.Setenv("DALEEL_LOG_LEVEL", "debug")
	t.Setenv("DALEEL_SESSION_TTL", "2h")
	t.Setenv("DALEEL_RATE_PUBLIC_MAX", "250")

	cfg, err := Load(writeConfig(t, "database:\n  path: from-file.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/daleel/daleel.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL.D())
	assert.Equal(t, 250, cfg.RateLimit.Public.Max)
}

func TestLoad_EnvBadInt(t *testing.T) {
	t.Setenv("DALEEL_RATE_AUTH_MAX", "five")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DALEEL_RATE_AUTH_MAX")
}

func TestValidate_SchemaRejections(t *testing.T) {
	tests := map[string]func(*Config){
		"unknown env":      func(c *Config) { c.Env = "staging" },
		"unknown level":    func(c *Config) { c.Log.Level = "trace" },
		"empty addr":       func(c *Config) { c.Server.Addr = "" },
		"empty db path":    func(c *Config) { c.Database.Path = "" },
		"zero rate limit":  func(c *Config) { c.RateLimit.Admin.Max = 0 },
		"zero session ttl": func(c *Config) { c.Session.TTL = 0 },
		"zero window":      func(c *Config) { c.RateLimit.Public.Window = 0 },
		"negative csrf":    func(c *Config) { c.CSRF.TTL = Duration(-time.Minute) },
		"zero shutdown":    func(c *Config) { c.Server.ShutdownTimeout = 0 },
		"empty proxy":      func(c *Config) { c.Server.TrustedProxies = []string{""} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_ZeroDurations(t *testing.T) {
	_, err := Load(writeConfig(t, "rateLimit:\n  auth:\n    max: 5\n    window: 0s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	t.Setenv("DALEEL_SESSION_TTL", "0s")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestValidate_PositiveDurationsAccepted(t *testing.T) {
	cfg := Default()
	cfg.Session.TTL = Duration(90 * time.Second)
	cfg.CSRF.TTL = Duration(1500 * time.Millisecond)
	require.NoError(t, cfg.Validate())
}

func TestLoad_TrustedProxies(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  trustedProxies: [\"10.0.0.0/8\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)

	t.Setenv("DALEEL_TRUSTED_PROXIES", "127.0.0.1, 192.168.0.0/16")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
}
