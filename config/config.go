// Package config provides configuration parsing for pulseboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/pulseboard/chart"
	"gitlab.com/tinyland/lab/pulseboard/metrics"
	"gitlab.com/tinyland/lab/pulseboard/sampler"
)

// Config represents the pulseboard configuration.
type Config struct {
	// Sampling holds metric collection settings.
	Sampling SamplingConfig `yaml:"sampling"`

	// Charts holds chart history and rendering settings.
	Charts ChartsConfig `yaml:"charts"`

	// Daemon holds headless collection settings.
	Daemon DaemonConfig `yaml:"daemon"`
}

// SamplingConfig holds metric collection settings.
type SamplingConfig struct {
	// Period is a duration string (e.g. "500ms", "1s") between sampling passes.
	Period string `yaml:"period"`
	// ResetPolicy selects counter-reset handling: "rebaseline" or "clamp".
	ResetPolicy string `yaml:"reset_policy"`
}

// ChartsConfig holds chart history and rendering settings.
type ChartsConfig struct {
	// RedrawInterval is a duration string for the minimum time between redraws.
	RedrawInterval string `yaml:"redraw_interval"`
	// History is the number of samples each series retains.
	History int `yaml:"history"`
	// Palette is the list of hex series colors, assigned round-robin.
	Palette []string `yaml:"palette"`
}

// DaemonConfig holds headless collection settings.
type DaemonConfig struct {
	// CacheDir is the directory for the current-values snapshot.
	CacheDir string `yaml:"cache_dir"`
	// LogFile is the path for daemon log output.
	LogFile string `yaml:"log_file"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Sampling: SamplingConfig{
			Period:      sampler.DefaultPeriod.String(),
			ResetPolicy: "rebaseline",
		},
		Charts: ChartsConfig{
			RedrawInterval: chart.DefaultThrottle.String(),
			History:        metrics.DefaultCapacity,
			Palette:        append([]string(nil), metrics.DefaultPalette...),
		},
		Daemon: DaemonConfig{
			CacheDir: filepath.Join(home, ".cache", "pulseboard"),
			LogFile:  filepath.Join(home, ".local", "log", "pulseboard.log"),
		},
	}
}

// LoadConfig loads configuration from a YAML file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for required fields and logical consistency.
func (c *Config) Validate() error {
	if c.Sampling.Period == "" {
		return fmt.Errorf("sampling.period is required")
	}
	if d, err := time.ParseDuration(c.Sampling.Period); err != nil {
		return fmt.Errorf("sampling.period: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("sampling.period must be positive, got %q", c.Sampling.Period)
	}

	if _, err := metrics.ParseResetPolicy(c.Sampling.ResetPolicy); err != nil {
		return fmt.Errorf("sampling.reset_policy: %w", err)
	}

	if c.Charts.RedrawInterval == "" {
		return fmt.Errorf("charts.redraw_interval is required")
	}
	if d, err := time.ParseDuration(c.Charts.RedrawInterval); err != nil {
		return fmt.Errorf("charts.redraw_interval: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("charts.redraw_interval must be positive, got %q", c.Charts.RedrawInterval)
	}

	if c.Charts.History < 2 {
		return fmt.Errorf("charts.history must be at least 2, got %d", c.Charts.History)
	}

	if len(c.Charts.Palette) == 0 {
		return fmt.Errorf("charts.palette must list at least one color")
	}
	for i, color := range c.Charts.Palette {
		if !validHexColor(color) {
			return fmt.Errorf("charts.palette[%d] must be a #RRGGBB color, got %q", i, color)
		}
	}

	if c.Daemon.CacheDir == "" {
		return fmt.Errorf("daemon.cache_dir is required")
	}
	if c.Daemon.LogFile == "" {
		return fmt.Errorf("daemon.log_file is required")
	}

	return nil
}

// SamplingPeriod returns the parsed sampling period. Call Validate first;
// an unparsable value falls back to the sampler default.
func (c *Config) SamplingPeriod() time.Duration {
	d, err := time.ParseDuration(c.Sampling.Period)
	if err != nil || d <= 0 {
		return sampler.DefaultPeriod
	}
	return d
}

// RedrawInterval returns the parsed minimum redraw interval. Call Validate
// first; an unparsable value falls back to the chart default.
func (c *Config) RedrawInterval() time.Duration {
	d, err := time.ParseDuration(c.Charts.RedrawInterval)
	if err != nil || d <= 0 {
		return chart.DefaultThrottle
	}
	return d
}

// ResetPolicy returns the parsed counter-reset policy. Call Validate first;
// an invalid value falls back to rebaseline.
func (c *Config) ResetPolicy() metrics.ResetPolicy {
	p, err := metrics.ParseResetPolicy(c.Sampling.ResetPolicy)
	if err != nil {
		return metrics.ResetRebaseline
	}
	return p
}

// SeriesCaps returns the per-class series capacity map for the registry.
func (c *Config) SeriesCaps() map[metrics.Class]int {
	return map[metrics.Class]int{
		metrics.ClassCPU:  c.Charts.History,
		metrics.ClassDisk: c.Charts.History,
		metrics.ClassNet:  c.Charts.History,
	}
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
