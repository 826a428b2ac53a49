package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Server.EnableCORS)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.Equal(t, DefaultAPIURL, cfg.CratesIO.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.CratesIO.Timeout)
	assert.Equal(t, 10, cfg.CratesIO.MaxConcurrent)

	assert.Equal(t, "0.0.0.0:3000", cfg.BindAddress())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
server:
  port: 8080
  host: 127.0.0.1
cache:
  enabled: false
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultAPIURL, cfg.CratesIO.APIURL)
}

func TestValidate(t *testing.T) {
	mutations := map[string]func(*Config){
		"zero port":          func(c *Config) { c.Server.Port = 0 },
		"port too large":     func(c *Config) { c.Server.Port = 70000 },
		"zero timeout":       func(c *Config) { c.Server.RequestTimeout = 0 },
		"bad cache entries":  func(c *Config) { c.Cache.MaxEntries = 0 },
		"bad cache ttl":      func(c *Config) { c.Cache.TTL = -time.Second },
		"bad log level":      func(c *Config) { c.Logging.Level = "trace" },
		"bad log format":     func(c *Config) { c.Logging.Format = "xml" },
		"empty api url":      func(c *Config) { c.CratesIO.APIURL = "" },
		"bad client timeout": func(c *Config) { c.CratesIO.Timeout = 0 },
		"bad concurrency":    func(c *Config) { c.CratesIO.MaxConcurrent = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestValidate_DisabledCacheSkipsCacheChecks(t *testing.T) {
	cfg := Default()
	cfg.Cache.Enabled = false
	cfg.Cache.TTL = 0
	cfg.Cache.MaxEntries = 0
	assert.NoError(t, cfg.Validate())
}

func TestSampleYAMLRoundTrips(t *testing.T) {
	sample := SampleYAML()
	require.NotEmpty(t, sample)

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(sample), &cfg))
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}
