package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://numismatics.org/ocre/", cfg.OCRE.BaseURL)
	assert.Equal(t, "http://numismatics.org/crro/", cfg.CRRO.BaseURL)
	assert.Equal(t, 5, cfg.OCRE.Limit)
	assert.False(t, cfg.RPC.Scrape)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 30, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.InDelta(t, 0.8, cfg.Thresholds.SuccessCutoff, 1e-9)
	assert.InDelta(t, 0.92, cfg.Thresholds.ReviewCutoff, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numisref.yaml")
	content := `
ocre:
  base_url: https://ocre.example.org/
cache:
  ttl: 2h
  max_entries: 50
rate_limit:
  requests: 10
  window: 30s
rpc:
  scrape: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "https://ocre.example.org/", cfg.OCRE.BaseURL)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.RPC.Scrape)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://numismatics.org/crro/", cfg.CRRO.BaseURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numisref.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  requests: 10\n"), 0o600))

	t.Setenv("NUMISREF_RATE_LIMIT_REQUESTS", "99")
	t.Setenv("NUMISREF_HTTP_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.RateLimit.Requests)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative_url", func(c *Config) { c.OCRE.BaseURL = "ocre/" }},
		{"zero_timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"zero_rate", func(c *Config) { c.RateLimit.Requests = 0 }},
		{"zero_ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"cutoff_above_one", func(c *Config) { c.Thresholds.SuccessCutoff = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
		})
	}
}
