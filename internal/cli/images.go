package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Show image dimensions and format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.analyzer.Info(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output.Format, info)
		},
	}
}

func (a *app) newThresholdsCommand() *cobra.Command {
	var frame frameFlags

	cmd := &cobra.Command{
		Use:   "thresholds <image>",
		Short: "Estimate Canny thresholds for an image",
		Long: `Estimate Canny hysteresis thresholds from the gradient statistics of
the preprocessed frame. The result can be copied into the detection section
of usgeom.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&frame)
			if err != nil {
				return err
			}
			report, err := a.analyzer.EstimateThresholds(args[0], opts)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output.Format, report)
		},
	}
	frame.register(cmd, "")
	return cmd
}

func (a *app) newEdgesCommand() *cobra.Command {
	var frame frameFlags

	cmd := &cobra.Command{
		Use:   "edges <image>",
		Short: "Compute the Canny edge map",
		Long: `Run preprocessing and Canny edge detection and report edge statistics.
With --overlay the binary edge map is written as an image.

Examples:
  usgeom edges frame.png --canny-lower 20 --canny-upper 60 --overlay edges.png
  usgeom edges frame.png --auto-thresholds`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&frame)
			if err != nil {
				return err
			}
			opts.AutoThresholds, _ = cmd.Flags().GetBool("auto-thresholds")

			cfg := a.cfg.Detection.Normalize()
			report, err := a.analyzer.Edges(args[0], cfg.CannyLower, cfg.CannyUpper, opts)
			if err != nil {
				return err
			}
			return a.finish(cmd, report, frame.output)
		},
	}
	frame.register(cmd, "write the edge map to this file")
	registerCannyFlags(cmd)
	return cmd
}

func (a *app) newPreprocessCommand() *cobra.Command {
	var frame frameFlags

	cmd := &cobra.Command{
		Use:   "preprocess <image>",
		Short: "Write the preprocessed frame",
		Long: `Convert the frame to grayscale, equalize it with CLAHE and smooth it with
a bilateral filter, as every detector does before edge extraction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(&frame)
			if err != nil {
				return err
			}
			report, err := a.analyzer.Preprocess(args[0], opts)
			if err != nil {
				return err
			}
			return a.finish(cmd, report, frame.output)
		},
	}
	frame.register(cmd, "write the preprocessed frame to this file")
	return cmd
}
