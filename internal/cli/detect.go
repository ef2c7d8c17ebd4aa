package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/usgeom/internal/analysis"
	"github.com/ironsheep/usgeom/internal/detection"
)

func (a *app) newLinesCommand() *cobra.Command {
	var (
		frame  frameFlags
		method string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "lines <image>",
		Short: "Detect straight line segments",
		Long: `Detect straight line segments such as needles and probe edges.

The hough method runs the probabilistic Hough transform on the Canny edge
map. The ransac method fits lines one at a time to the edge points and
reports inlier support and confidence for each.

Examples:
  usgeom lines frame.png
  usgeom lines frame.png --method ransac --seed 42 --max-lines 3
  usgeom lines frame.png --roi 100,50,500,400 --overlay lines.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analysis.ParseLineMethod(method)
			if err != nil {
				return err
			}
			opts, err := a.options(&frame)
			if err != nil {
				return err
			}
			opts.AutoThresholds, _ = cmd.Flags().GetBool("auto-thresholds")
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}

			report, err := a.analyzer.Lines(args[0], m, a.cfg.Detection, opts)
			if err != nil {
				return err
			}
			return a.finish(cmd, report, frame.output)
		},
	}

	frame.register(cmd, "write the frame with detected lines drawn to this file")
	registerCannyFlags(cmd)
	d := detection.DefaultConfig()
	cmd.Flags().StringVarP(&method, "method", "m", string(analysis.LinesHough), "line detector (hough, ransac)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "RANSAC random seed (default random)")
	cmd.Flags().Int("hough-threshold", d.HoughThreshold, "minimum Hough accumulator votes")
	cmd.Flags().Int("min-line-length", d.MinLineLength, "minimum Hough segment length in pixels")
	cmd.Flags().Int("max-line-gap", d.MaxLineGap, "maximum gap bridged within a Hough segment")
	cmd.Flags().Int("max-lines", d.Ransac.MaxLines, "maximum number of RANSAC lines")
	return cmd
}

func (a *app) newInterfacesCommand() *cobra.Command {
	var frame frameFlags

	cmd := &cobra.Command{
		Use:   "interfaces <image>",
		Short: "Detect horizontal tissue interfaces",
		Long: `Detect horizontal tissue interfaces as peaks in the number of edge pixels
per row. Each interface is reported as a full-width horizontal line, ordered
top to bottom.

Examples:
  usgeom interfaces frame.png
  usgeom interfaces frame.png --min-peak-ratio 0.25 --format text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&frame)
			if err != nil {
				return err
			}
			opts.AutoThresholds, _ = cmd.Flags().GetBool("auto-thresholds")

			report, err := a.analyzer.Interfaces(args[0], a.cfg.Detection, opts)
			if err != nil {
				return err
			}
			return a.finish(cmd, report, frame.output)
		},
	}

	frame.register(cmd, "write the frame with detected interfaces drawn to this file")
	registerCannyFlags(cmd)
	cmd.Flags().Float64("min-peak-ratio", detection.DefaultConfig().MinPeakHeightRatio,
		"minimum edge pixels in a row, as a fraction of the frame width [0.05, 0.5]")
	return cmd
}

func (a *app) newCirclesCommand() *cobra.Command {
	var (
		frame  frameFlags
		method string
	)

	cmd := &cobra.Command{
		Use:   "circles <image>",
		Short: "Detect circular targets",
		Long: `Detect circular targets such as spheres in a phantom.

The hough method runs the Hough gradient transform. The blob method
thresholds the frame with Otsu's method and keeps round contours. The
default auto method runs Hough and falls back to blobs when Hough finds
nothing.

Examples:
  usgeom circles frame.png
  usgeom circles frame.png --method blob --format text
  usgeom circles frame.png --min-radius 20 --max-radius 80 --overlay circles.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := analysis.ParseCircleMethod(method)
			if err != nil {
				return err
			}
			opts, err := a.options(&frame)
			if err != nil {
				return err
			}

			report, err := a.analyzer.Circles(args[0], m, a.cfg.Detection, opts)
			if err != nil {
				return err
			}
			return a.finish(cmd, report, frame.output)
		},
	}

	frame.register(cmd, "write the frame with detected circles drawn to this file")
	d := detection.DefaultConfig()
	cmd.Flags().StringVarP(&method, "method", "m", string(analysis.CirclesAuto), "circle detector (auto, hough, blob)")
	cmd.Flags().Int("min-radius", d.MinRadius, "minimum circle radius in pixels")
	cmd.Flags().Int("max-radius", d.MaxRadius, "maximum circle radius in pixels")
	return cmd
}

// finish saves the optional image and prints the report.
func (a *app) finish(cmd *cobra.Command, report overlaySource, imagePath string) error {
	if err := saveOverlay(report, imagePath); err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), a.cfg.Output.Format, report)
}
