// Package cli implements the usgeom command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/usgeom/internal/analysis"
	"github.com/ironsheep/usgeom/internal/config"
)

// BuildInfo is stamped into the binary by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

// skipConfig marks commands that must run even when the config is broken.
const skipConfig = "skip-config"

// app holds the state shared by every command of one invocation.
type app struct {
	build    BuildInfo
	cfgFile  string
	loader   *config.Loader
	cfg      *config.Config
	analyzer *analysis.Analyzer
}

// flagBindings maps command-line flags onto configuration keys. Flags a
// command does not define are skipped.
var flagBindings = []struct {
	flag string
	key  string
}{
	{"verbose", "verbose"},
	{"log-level", "log_level"},
	{"log-format", "log_format"},
	{"format", "output.format"},
	{"overlay-color", "output.overlay_color"},
	{"max-image-dim", "server.max_image_dim"},
	{"metrics-addr", "server.metrics_addr"},
	{"canny-lower", "detection.canny_lower"},
	{"canny-upper", "detection.canny_upper"},
	{"hough-threshold", "detection.hough_threshold"},
	{"min-line-length", "detection.min_line_length"},
	{"max-line-gap", "detection.max_line_gap"},
	{"min-radius", "detection.min_radius"},
	{"max-radius", "detection.max_radius"},
	{"min-peak-ratio", "detection.min_peak_height_ratio"},
	{"max-lines", "detection.ransac.max_lines"},
}

// NewRootCommand builds the usgeom command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{build: build, analyzer: analysis.New(nil)}

	root := &cobra.Command{
		Use:   "usgeom",
		Short: "Line and circle detection for ultrasound frames",
		Long: `usgeom finds straight lines (needles, probe edges), horizontal tissue
interfaces and spherical targets in ultrasound images.

Detectors:
- Probabilistic Hough and iterative RANSAC line fitting
- Row-projection interface detection
- Hough gradient circles with a contour blob fallback

Examples:
  usgeom lines frame.png --method ransac --seed 1
  usgeom circles frame.png --overlay circles.png
  usgeom interfaces frame.png --format yaml
  usgeom serve --metrics-addr :9090`,
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			slog.SetDefault(newLogger(a.cfg, cmd.ErrOrStderr()))
			if used := a.loader.ConfigFileUsed(); used != "" {
				slog.Debug("Loaded configuration", "file", used)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is usgeom.yaml in ., $XDG_CONFIG_HOME/usgeom, /etc/usgeom)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.StringP("format", "f", "json", "output format (json, yaml, text)")

	root.AddCommand(
		a.newInfoCommand(),
		a.newLinesCommand(),
		a.newInterfacesCommand(),
		a.newCirclesCommand(),
		a.newThresholdsCommand(),
		a.newEdgesCommand(),
		a.newPreprocessCommand(),
		a.newServeCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(build BuildInfo) int {
	cmd := NewRootCommand(build)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	a.loader = config.NewLoader()
	for _, b := range flagBindings {
		if err := a.loader.BindFlag(b.key, cmd.Flags().Lookup(b.flag)); err != nil {
			return err
		}
	}

	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

// newLogger builds the slog logger described by cfg. Logs always go to w
// (stderr) because stdout carries results and the MCP protocol.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "usgeom %s\n  Commit: %s\n  Built:  %s\n",
				a.build.Version, a.build.Commit, a.build.Date)
			return err
		},
	}
}
