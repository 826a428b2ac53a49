// Package cmd provides the command-line interface for crate-checker with
// layered configuration from multiple sources.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (--api-url, --timeout, etc.)
//  2. CRATE_CHECKER_* environment variables
//  3. Configuration file (.crate-checker.yml, or --config / CRATE_CHECKER_CONFIG_FILE)
//  4. Built-in defaults
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandlbn/crate-checker/internal/cache"
	"github.com/sandlbn/crate-checker/internal/checker"
	"github.com/sandlbn/crate-checker/internal/config"
	"github.com/sandlbn/crate-checker/internal/crates"
	"github.com/sandlbn/crate-checker/internal/logging"
	"github.com/sandlbn/crate-checker/internal/metrics"
	"github.com/sandlbn/crate-checker/internal/output"
)

var (
	cfgFile     string
	formatFlag  string
	verboseFlag bool
	quietFlag   bool
	timeoutFlag string
	apiURLFlag  string
)

// errSilentExit signals a nonzero exit whose explanation was already
// written to stdout (e.g. a missing crate in check output).
var errSilentExit = errors.New("silent exit")

var rootCmd = &cobra.Command{
	Use:   "crate-checker",
	Short: "Check crate existence, versions, and metadata on crates.io",
	Long: `crate-checker resolves information about crates from the crates.io
registry: existence, latest versions, version lists, dependencies,
download statistics, and search. It supports batch requests in three
JSON shapes, an HTTP API server mode, and response caching.

Quick Start:
  crate-checker check serde               Check if a crate exists
  crate-checker info tokio --deps         Detailed crate information
  crate-checker batch --json '{"crates": ["serde", "tokio"]}'
  crate-checker server --port 8080        Start the HTTP API`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSilentExit) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "table",
		"output format (table, json, yaml, compact, csv)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default .crate-checker.yml, or CRATE_CHECKER_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&timeoutFlag, "timeout", "",
		"request timeout, e.g. 30s, 2m, 1h")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "",
		"custom crates.io API base URL")
}

// initConfig wires viper's configuration sources before any command runs.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CRATE_CHECKER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".crate-checker")
	}

	viper.SetEnvPrefix("CRATE_CHECKER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env vars apply.
	if err := viper.ReadInConfig(); err == nil && verboseFlag {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// outputFormat resolves the --format flag.
func outputFormat() (output.Format, error) {
	return output.ParseFormat(formatFlag)
}

// newLogger builds the CLI logger. Structured output formats suppress
// non-error logging so stdout stays parseable; logs go to stderr always.
func newLogger(cfg *config.Config, format output.Format) *slog.Logger {
	level := cfg.Logging.Level
	if quietFlag || format.Structured() {
		level = "error"
	} else if verboseFlag {
		level = "debug"
	}
	return logging.NewLogger(&logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
}

// loadConfig loads and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newRegistryClient builds the crates.io client, applying flag overrides
// on top of configuration.
func newRegistryClient(cfg *config.Config, logger *slog.Logger) (*crates.Client, error) {
	opts := []crates.ClientOption{
		crates.WithBaseURL(cfg.CratesIO.APIURL),
		crates.WithUserAgent(cfg.CratesIO.UserAgent),
		crates.WithTimeout(cfg.CratesIO.Timeout),
		crates.WithLogger(logger),
	}
	if apiURLFlag != "" {
		opts = append(opts, crates.WithBaseURL(apiURLFlag))
	}
	if timeoutFlag != "" {
		timeout, err := output.ParseTimeout(timeoutFlag)
		if err != nil {
			return nil, err
		}
		opts = append(opts, crates.WithTimeout(timeout))
	}
	return crates.NewClient(opts...), nil
}

// newService assembles the resolution core for one CLI invocation.
func newService(cfg *config.Config, client *crates.Client, logger *slog.Logger) *checker.Service {
	responseCache := cache.New(cfg.Cache.Enabled, cfg.Cache.TTL, cfg.Cache.MaxEntries)
	return checker.NewService(client, responseCache, metrics.NewRecorder(), logger)
}

// cliDeps bundles what most commands need.
type cliDeps struct {
	cfg    *config.Config
	format output.Format
	logger *slog.Logger
	client *crates.Client
}

// setup performs the shared command preamble.
func setup() (*cliDeps, error) {
	format, err := outputFormat()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, format)
	client, err := newRegistryClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &cliDeps{cfg: cfg, format: format, logger: logger, client: client}, nil
}

// render writes v to stdout in the selected format.
func (d *cliDeps) render(v any) error {
	return output.Render(os.Stdout, v, d.format)
}
