// Package simconfig loads the ambient configuration for the simulation CLI:
// logging, metrics, and default run parameters. It does not replace
// pkg/builder's own in-process validation, and it does not describe an
// experiment: pools, topology, seed and budget are read from the
// experiment file by pkg/scenario.
package simconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jihwankim/dscale-sim/pkg/obslog"
)

// Config is the root configuration file shape for cmd/dscale-sim.
type Config struct {
	Run     RunConfig     `yaml:"run"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// RunConfig holds default run parameters. cmd/dscale-sim does not apply
// them to an experiment: the seed and maxSteps of a run come from the
// experiment file alone.
type RunConfig struct {
	DefaultSeed     int64 `yaml:"default_seed"`
	DefaultMaxSteps int64 `yaml:"default_max_steps"`
}

// LoggingConfig configures pkg/obslog.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures whether and where pkg/obsmetrics serves
// /metrics during a run.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			DefaultSeed:     0,
			DefaultMaxSteps: 1000,
		},
		Logging: LoggingConfig{
			Level:  string(obslog.LevelInfo),
			Format: string(obslog.FormatText),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Load reads a YAML config file at path, falling back to DefaultConfig for
// any field it does not set, then validates the result. Environment
// variable references in the file (e.g. $HOME) are expanded before
// parsing.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("simconfig: reading %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("simconfig: parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("simconfig: marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("simconfig: writing %s: %w", path, err)
	}
	return nil
}

// Validate returns the first fatal configuration error, or nil.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("simconfig: invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text", "":
	default:
		return fmt.Errorf("simconfig: invalid logging.format %q", c.Logging.Format)
	}
	if c.Run.DefaultMaxSteps <= 0 {
		return fmt.Errorf("simconfig: run.default_max_steps must be positive, got %d", c.Run.DefaultMaxSteps)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("simconfig: metrics.addr must be set when metrics.enabled is true")
	}
	return nil
}
