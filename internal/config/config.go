// Package config loads the application configuration from a YAML file and
// fills in defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/peternemser-ui/font-scanner-sub013/internal/paywall"
	"github.com/peternemser-ui/font-scanner-sub013/internal/webclient"
)

// Config is the top-level application configuration shared by the CLI and
// the gateway binary.
type Config struct {
	// Gateway listen address.
	Addr string `yaml:"addr"`

	// AnalyzerBaseURL is the base URL of the analyzer backend.
	AnalyzerBaseURL string `yaml:"analyzer_base_url"`

	// Timeout bounds each scan request end to end.
	Timeout Duration `yaml:"timeout"`

	// StepInterval is the cadence of optimistic progress advancement
	// while a scan request is in flight.
	StepInterval Duration `yaml:"step_interval"`

	// StorageDir holds the report archive and sqlite unlock store.
	StorageDir string `yaml:"storage_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Paywall paywall.Config   `yaml:"paywall"`
	Client  webclient.Config `yaml:"client"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		AnalyzerBaseURL: "http://localhost:9999",
		Timeout:         DurationFrom(90 * time.Second),
		StepInterval:    DurationFrom(3 * time.Second),
		StorageDir:      "./data",
		LogLevel:        "info",
		Paywall:         paywall.Config{Backend: "sqlite"},
		Client:          webclient.Config{Backend: "nethttp"},
	}
}

// Load reads a YAML config file and merges it over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.AnalyzerBaseURL == "" {
		return fmt.Errorf("analyzer_base_url must not be empty")
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.StepInterval.Duration <= 0 {
		return fmt.Errorf("step_interval must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
