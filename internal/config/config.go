// Package config loads application settings from a YAML file, USGEOM_*
// environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ironsheep/usgeom/internal/detection"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `mapstructure:"log_format" yaml:"log_format" json:"log_format"`

	// Verbose forces debug logging.
	Verbose bool `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Detection holds the detector parameters.
	Detection detection.Config `mapstructure:"detection" yaml:"detection" json:"detection"`

	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// OutputConfig controls how CLI results are printed.
type OutputConfig struct {
	// Format is json, yaml or text.
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// OverlayColor, when set, draws every overlay result in this hex color
	// instead of the per-index palette.
	OverlayColor string `mapstructure:"overlay_color" yaml:"overlay_color" json:"overlay_color"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	// MetricsAddr is the listen address of the Prometheus endpoint.
	// Empty disables it.
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr" json:"metrics_addr"`

	// MaxImageDim downsizes images whose larger side exceeds it before
	// detection. Zero disables downsizing.
	MaxImageDim int `mapstructure:"max_image_dim" yaml:"max_image_dim" json:"max_image_dim"`
}

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validFormats    = []string{"json", "yaml", "text"}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Detection: detection.DefaultConfig(),
		Output: OutputConfig{
			Format: "json",
		},
	}
}

// Validate checks enumerated fields and rejects non-finite detection
// parameters. Out-of-range detection values are not errors; detectors clamp
// them.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("%w: log level %q (must be one of: %s)",
			ErrInvalidConfig, c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		return fmt.Errorf("%w: log format %q (must be one of: %s)",
			ErrInvalidConfig, c.LogFormat, strings.Join(validLogFormats, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("%w: output format %q (must be one of: %s)",
			ErrInvalidConfig, c.Output.Format, strings.Join(validFormats, ", "))
	}
	if c.Server.MaxImageDim < 0 {
		return fmt.Errorf("%w: server.max_image_dim must not be negative", ErrInvalidConfig)
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
