// Package config provides configuration management for crate-checker using
// Viper for flexible loading from files, environment variables, and
// command-line flags.
//
// Configuration is layered with clear precedence: command-line flags
// override CRATE_CHECKER_* environment variables, which override the
// .crate-checker.yml configuration file, which overrides built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values applied when neither flags, environment, nor the config
// file set an option.
const (
	DefaultAPIURL     = "https://crates.io/api/v1"
	DefaultUserAgent  = "crate-checker/1.0"
	DefaultTimeout    = 30 * time.Second
	DefaultServerPort = 3000
)

type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	CratesIO CratesIOConfig `yaml:"crates_io" mapstructure:"crates_io"`
}

type ServerConfig struct {
	Port           int           `yaml:"port" mapstructure:"port"`
	Host           string        `yaml:"host" mapstructure:"host"`
	EnableCORS     bool          `yaml:"enable_cors" mapstructure:"enable_cors"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type CratesIOConfig struct {
	APIURL        string        `yaml:"api_url" mapstructure:"api_url"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxConcurrent int           `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// SetDefaults registers the built-in default values with viper. Called
// once during command initialization, before any config file is read.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.max_entries", 1000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("crates_io.api_url", DefaultAPIURL)
	v.SetDefault("crates_io.user_agent", DefaultUserAgent)
	v.SetDefault("crates_io.timeout", DefaultTimeout)
	v.SetDefault("crates_io.max_concurrent", 10)
}

// Load unmarshals the merged viper configuration and validates it.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals configuration from a specific viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, _ := LoadFrom(v)
	return cfg
}

// Validate checks the configuration for values that would break the
// server or the upstream client at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request timeout must be positive")
	}
	if c.Cache.Enabled && c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive when caching is enabled")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when caching is enabled")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	if c.CratesIO.APIURL == "" {
		return fmt.Errorf("crates_io api_url cannot be empty")
	}
	if c.CratesIO.Timeout <= 0 {
		return fmt.Errorf("crates_io timeout must be positive")
	}
	if c.CratesIO.MaxConcurrent <= 0 {
		return fmt.Errorf("crates_io max_concurrent must be positive")
	}
	return nil
}

// BindAddress returns the host:port the HTTP server should listen on.
func (c *Config) BindAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
