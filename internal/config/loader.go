package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "usgeom"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "USGEOM"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads the first usgeom.yaml found on the search path, overlays
// environment variables and bound flags, and validates the result. A
// missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	return l.read(true)
}

// LoadWithFile loads configuration from a specific file path. An empty path
// falls back to Load.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}
	l.v.SetConfigFile(configFile)
	return l.read(false)
}

func (l *Loader) read(optional bool) (*Config, error) {
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !optional || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// BindFlag binds a command-line flag to a configuration key. A nil flag is
// ignored so commands can bind optional flags unconditionally.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}
	if err := l.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind flag %s: %w", flag.Name, err)
	}
	return nil
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// AllSettings returns the resolved key/value tree for debugging.
func (l *Loader) AllSettings() map[string]any {
	return l.v.AllSettings()
}

// WriteDefaultConfig writes the built-in defaults to filename as YAML.
func WriteDefaultConfig(filename string) error {
	l := NewLoader()
	l.setDefaults()
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if err := l.v.WriteConfigAs(filename); err != nil {
		return fmt.Errorf("write config %s: %w", filename, err)
	}
	return nil
}

// SearchPaths returns the directories searched for usgeom.yaml, in order.
func SearchPaths() []string {
	paths := []string{"."}
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		paths = append(paths, filepath.Join(dir, "usgeom"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "usgeom"))
	}
	return append(paths, "/etc/usgeom")
}

func (l *Loader) addConfigPaths() {
	for _, p := range SearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables maps keys like detection.canny_lower to
// USGEOM_DETECTION_CANNY_LOWER.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every key so that AutomaticEnv can resolve it
// during Unmarshal.
func (l *Loader) setDefaults() {
	d := DefaultConfig()
	det := d.Detection

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("log_format", d.LogFormat)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("detection.canny_lower", det.CannyLower)
	l.v.SetDefault("detection.canny_upper", det.CannyUpper)
	l.v.SetDefault("detection.hough_threshold", det.HoughThreshold)
	l.v.SetDefault("detection.min_line_length", det.MinLineLength)
	l.v.SetDefault("detection.max_line_gap", det.MaxLineGap)
	l.v.SetDefault("detection.circle_dp", det.CircleDP)
	l.v.SetDefault("detection.circle_min_dist", det.CircleMinDist)
	l.v.SetDefault("detection.circle_param1", det.CircleParam1)
	l.v.SetDefault("detection.circle_param2", det.CircleParam2)
	l.v.SetDefault("detection.min_radius", det.MinRadius)
	l.v.SetDefault("detection.max_radius", det.MaxRadius)
	l.v.SetDefault("detection.min_peak_height_ratio", det.MinPeakHeightRatio)

	l.v.SetDefault("detection.blob.min_area", det.Blob.MinArea)
	l.v.SetDefault("detection.blob.max_area", det.Blob.MaxArea)
	l.v.SetDefault("detection.blob.min_circularity", det.Blob.MinCircularity)

	l.v.SetDefault("detection.ransac.max_lines", det.Ransac.MaxLines)
	l.v.SetDefault("detection.ransac.min_inliers", det.Ransac.MinInliers)
	l.v.SetDefault("detection.ransac.iterations", det.Ransac.Iterations)
	l.v.SetDefault("detection.ransac.min_inlier_ratio", det.Ransac.MinInlierRatio)
	l.v.SetDefault("detection.ransac.min_sample_distance", det.Ransac.MinSampleDistance)
	l.v.SetDefault("detection.ransac.base_threshold", det.Ransac.BaseThreshold)
	l.v.SetDefault("detection.ransac.baseline_size", det.Ransac.BaselineSize)

	l.v.SetDefault("output.format", d.Output.Format)
	l.v.SetDefault("output.overlay_color", d.Output.OverlayColor)

	l.v.SetDefault("server.metrics_addr", d.Server.MetricsAddr)
	l.v.SetDefault("server.max_image_dim", d.Server.MaxImageDim)
}
