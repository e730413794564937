package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/dtn-window-stats/constants"
)

// DefaultConfig implements the Config interface.
type DefaultConfig struct {
	// Window settings, in simulated seconds
	windowSize   float64
	tickInterval float64

	// Output settings
	logDir string

	// Metrics settings
	metricsEnabled bool
	metricsAddr    string
}

// NewDefaultConfig creates a new configuration with default values.
func NewDefaultConfig() *DefaultConfig {
	return &DefaultConfig{
		windowSize:   constants.DefaultWindowSize,
		tickInterval: constants.DefaultTickInterval,
		logDir:       constants.DefaultLogDir,
		metricsAddr:  constants.DefaultMetricsAddr,
	}
}

// GetWindowSize returns the window length in seconds.
func (c *DefaultConfig) GetWindowSize() float64 {
	return c.windowSize
}

// GetLogDir returns the output directory.
func (c *DefaultConfig) GetLogDir() string {
	return c.logDir
}

// GetTickInterval returns the replay tick interval in seconds.
func (c *DefaultConfig) GetTickInterval() float64 {
	return c.tickInterval
}

// IsMetricsEnabled returns whether metrics are exported.
func (c *DefaultConfig) IsMetricsEnabled() bool {
	return c.metricsEnabled
}

// GetMetricsAddr returns the metrics listen address.
func (c *DefaultConfig) GetMetricsAddr() string {
	return c.metricsAddr
}

// SetWindowSize sets the window length in seconds.
func (c *DefaultConfig) SetWindowSize(size float64) {
	c.windowSize = size
}

// SetLogDir sets the output directory.
func (c *DefaultConfig) SetLogDir(dir string) {
	c.logDir = dir
}

// SetTickInterval sets the replay tick interval in seconds.
func (c *DefaultConfig) SetTickInterval(interval float64) {
	c.tickInterval = interval
}

// SetMetricsEnabled sets whether metrics are exported.
func (c *DefaultConfig) SetMetricsEnabled(enabled bool) {
	c.metricsEnabled = enabled
}

// SetMetricsAddr sets the metrics listen address.
func (c *DefaultConfig) SetMetricsAddr(addr string) {
	c.metricsAddr = addr
}

// Validate validates the configuration.
func (c *DefaultConfig) Validate() error {
	if !positiveFinite(c.windowSize) || c.windowSize < constants.MinWindowSize {
		return fmt.Errorf(constants.ErrInvalidWindowSize, constants.MinWindowSize, c.windowSize)
	}

	if c.logDir == "" {
		return errors.New(constants.ErrLogDirRequired)
	}

	if !positiveFinite(c.tickInterval) {
		return fmt.Errorf("tick interval must be positive, got %v", c.tickInterval)
	}

	if c.metricsEnabled && c.metricsAddr == "" {
		return errors.New("metrics address must not be empty when metrics are enabled")
	}

	return nil
}

// Clone creates a copy of the configuration.
func (c *DefaultConfig) Clone() *DefaultConfig {
	clone := *c
	return &clone
}

// LoadFile overlays the YAML file at path onto the configuration.
func (c *DefaultConfig) LoadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.WindowSize != nil {
		c.windowSize = *fc.WindowSize
	}
	if fc.LogDir != nil {
		c.logDir = *fc.LogDir
	}
	if fc.TickInterval != nil {
		c.tickInterval = *fc.TickInterval
	}
	if fc.Metrics != nil {
		if fc.Metrics.Enabled != nil {
			c.metricsEnabled = *fc.Metrics.Enabled
		}
		if fc.Metrics.Addr != nil {
			c.metricsAddr = *fc.Metrics.Addr
		}
	}

	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
