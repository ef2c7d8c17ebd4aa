package cli

import (
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ironsheep/usgeom/internal/analysis"
	"github.com/ironsheep/usgeom/internal/detection"
)

// frameFlags are shared by every command that reads an image.
type frameFlags struct {
	roi    string
	output string
	grid   int
}

func (f *frameFlags) register(cmd *cobra.Command, outputHelp string) {
	cmd.Flags().StringVar(&f.roi, "roi", "", "region of interest as x1,y1,x2,y2 (x2 and y2 exclusive)")
	cmd.Flags().Int("max-image-dim", 0, "downsize frames whose larger side exceeds this many pixels (0 disables)")
	if outputHelp != "" {
		cmd.Flags().StringVarP(&f.output, "overlay", "o", "", outputHelp)
		cmd.Flags().String("overlay-color", "", "draw every result in this hex color instead of the palette")
		cmd.Flags().IntVar(&f.grid, "grid", 0, "draw a coordinate grid with this spacing on the overlay (0 disables)")
	}
}

// options builds analysis options from the flags and the loaded config.
func (a *app) options(f *frameFlags) (analysis.Options, error) {
	roi, err := parseRegion(f.roi)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		ROI:          roi,
		MaxDim:       a.cfg.Server.MaxImageDim,
		Overlay:      f.output != "",
		OverlayColor: a.cfg.Output.OverlayColor,
		GridSpacing:  f.grid,
	}, nil
}

// parseRegion parses "x1,y1,x2,y2". An empty string means no region.
func parseRegion(s string) (*analysis.Region, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid roi %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid roi %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= v[0] || v[3] <= v[1] {
		return nil, fmt.Errorf("invalid roi %q: empty region", s)
	}
	return &analysis.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

// registerCannyFlags adds the edge threshold flags. Defaults only show in
// help; values come from the config unless a flag is set.
func registerCannyFlags(cmd *cobra.Command) {
	d := detection.DefaultConfig()
	cmd.Flags().Float64("canny-lower", d.CannyLower, "lower Canny hysteresis threshold [10, 200]")
	cmd.Flags().Float64("canny-upper", d.CannyUpper, "upper Canny hysteresis threshold [10, 200]")
	cmd.Flags().Bool("auto-thresholds", false, "estimate Canny thresholds from the frame")
}

// overlaySource is implemented by reports that can carry a rendered image.
type overlaySource interface {
	OverlayImage() image.Image
}

// saveOverlay writes the report's rendered image to path, in the format
// implied by its extension.
func saveOverlay(report overlaySource, path string) error {
	if path == "" {
		return nil
	}
	img := report.OverlayImage()
	if img == nil {
		return fmt.Errorf("no image to write to %s", path)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Info("Wrote image", "path", path)
	return nil
}
