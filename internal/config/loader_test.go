package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/usgeom/internal/detection"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usgeom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
output:
  format: yaml
detection:
  canny_lower: 40
  canny_upper: 120
  min_peak_height_ratio: 0.2
  blob:
    min_circularity: 0.75
  ransac:
    iterations: 500
`)

	l := NewLoader()
	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.ConfigFileUsed())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 40.0, cfg.Detection.CannyLower)
	assert.Equal(t, 120.0, cfg.Detection.CannyUpper)
	assert.Equal(t, 0.2, cfg.Detection.MinPeakHeightRatio)
	assert.Equal(t, 0.75, cfg.Detection.Blob.MinCircularity)
	assert.Equal(t, 500, cfg.Detection.Ransac.Iterations)

	// Keys absent from the file keep their defaults.
	d := detection.DefaultConfig()
	assert.Equal(t, d.HoughThreshold, cfg.Detection.HoughThreshold)
	assert.Equal(t, d.Blob.MaxArea, cfg.Detection.Blob.MaxArea)
	assert.Equal(t, d.Ransac.MaxLines, cfg.Detection.Ransac.MaxLines)
}

func TestLoadWithFile_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "detection:\n  canny_lower: 40\n")
	t.Setenv("USGEOM_DETECTION_CANNY_LOWER", "45")
	t.Setenv("USGEOM_DETECTION_RANSAC_MAX_LINES", "3")
	t.Setenv("USGEOM_LOG_FORMAT", "json")

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 45.0, cfg.Detection.CannyLower)
	assert.Equal(t, 3, cfg.Detection.Ransac.MaxLines)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")
	t.Setenv("USGEOM_DETECTION_HOUGH_THRESHOLD", "70")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("hough-threshold", 100, "")
	fs.String("unused", "", "")
	require.NoError(t, fs.Parse([]string{"--hough-threshold=55"}))

	l := NewLoader()
	require.NoError(t, l.BindFlag("detection.hough_threshold", fs.Lookup("hough-threshold")))
	require.NoError(t, l.BindFlag("detection.missing", fs.Lookup("does-not-exist")))

	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 55, cfg.Detection.HoughThreshold)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"bad log level", "log_level: loud\n", true},
		{"bad log format", "log_format: xml\n", true},
		{"bad output format", "output:\n  format: csv\n", true},
		{"negative max dim", "server:\n  max_image_dim: -1\n", true},
		{"non-finite detection value", "detection:\n  circle_dp: .nan\n", true},
		{"malformed yaml", "detection: [unclosed\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadWithFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errorsIsInvalid(err))
		})
	}

	_, err := NewLoader().LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, []string{".", "/xdg/usgeom", "/etc/usgeom"}, SearchPaths())
}
