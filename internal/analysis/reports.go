package analysis

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/usgeom/internal/detection"
	"github.com/ironsheep/usgeom/internal/overlay"
	"github.com/ironsheep/usgeom/internal/raster"
)

// LineMethod selects a line detector.
type LineMethod string

// Line detectors.
const (
	LinesHough  LineMethod = "hough"
	LinesRansac LineMethod = "ransac"
)

// CircleMethod selects a circle detector.
type CircleMethod string

// Circle detectors. CirclesAuto tries Hough and falls back to blob.
const (
	CirclesHough CircleMethod = "hough"
	CirclesBlob  CircleMethod = "blob"
	CirclesAuto  CircleMethod = "auto"
)

// ParseLineMethod accepts "hough" or "ransac", case-insensitively. Empty
// means hough.
func ParseLineMethod(s string) (LineMethod, error) {
	switch m := LineMethod(strings.ToLower(s)); m {
	case "":
		return LinesHough, nil
	case LinesHough, LinesRansac:
		return m, nil
	}
	return "", fmt.Errorf("unknown line method %q (must be hough or ransac)", s)
}

// ParseCircleMethod accepts "hough", "blob" or "auto", case-insensitively.
// Empty means auto.
func ParseCircleMethod(s string) (CircleMethod, error) {
	switch m := CircleMethod(strings.ToLower(s)); m {
	case "":
		return CirclesAuto, nil
	case CirclesHough, CirclesBlob, CirclesAuto:
		return m, nil
	}
	return "", fmt.Errorf("unknown circle method %q (must be hough, blob or auto)", s)
}

// overlayReport carries the rendered overlay between the analyzer and the
// caller, which either encodes it into the report or writes it to disk.
type overlayReport struct {
	img image.Image

	// Overlay is filled in by EncodeOverlay.
	Overlay *raster.EncodedImage `json:"overlay,omitempty"`
}

// OverlayImage returns the rendered overlay, or nil when none was requested.
func (r *overlayReport) OverlayImage() image.Image {
	return r.img
}

// EncodeOverlay stores the overlay as a base64 PNG in the report.
func (r *overlayReport) EncodeOverlay() error {
	if r.img == nil {
		return nil
	}
	enc, err := raster.EncodePNG(r.img)
	if err != nil {
		return err
	}
	r.Overlay = enc
	return nil
}

// LinesReport is the result of a line or interface analysis.
type LinesReport struct {
	*detection.LineResult

	Frame      Frame      `json:"frame"`
	Thresholds Thresholds `json:"thresholds"`

	overlayReport
}

// CirclesReport is the result of a circle analysis.
type CirclesReport struct {
	*detection.CircleResult

	Frame Frame `json:"frame"`

	overlayReport
}

func overlayOptions(opts Options) ([]overlay.Option, error) {
	var out []overlay.Option
	if opts.GridSpacing > 0 {
		out = append(out, overlay.WithGrid(opts.GridSpacing))
	}
	if opts.OverlayColor == "" {
		return out, nil
	}
	c, err := overlay.ParseColor(opts.OverlayColor)
	if err != nil {
		return nil, fmt.Errorf("overlay color: %w", err)
	}
	return append(out, overlay.WithColor(c)), nil
}

// Lines runs the selected line detector on the image at path.
func (a *Analyzer) Lines(path string, method LineMethod, cfg detection.Config, opts Options) (*LinesReport, error) {
	ovOpts, err := overlayOptions(opts)
	if err != nil {
		return nil, err
	}
	buf, frame, err := a.load(path, opts)
	if err != nil {
		return nil, err
	}

	t := thresholds(buf, opts.AutoThresholds, cfg.CannyLower, cfg.CannyUpper)
	cfg = cfg.WithCannyThresholds(t.Lower, t.Upper)

	var res *detection.LineResult
	switch method {
	case LinesRansac:
		res = detection.DetectLinesRansac(buf, cfg, rng(opts))
	case LinesHough, "":
		res = detection.DetectLinesHough(buf, cfg)
	default:
		return nil, fmt.Errorf("unknown line method %q", method)
	}

	report := &LinesReport{
		LineResult: res,
		Frame:      frame,
		Thresholds: Thresholds{Lower: cfg.CannyLower, Upper: cfg.CannyUpper},
	}
	if opts.Overlay {
		report.img = overlay.Lines(buf.ToImage(), res, ovOpts...)
	}
	return report, nil
}

// Interfaces runs the interface detector on the image at path.
func (a *Analyzer) Interfaces(path string, cfg detection.Config, opts Options) (*LinesReport, error) {
	ovOpts, err := overlayOptions(opts)
	if err != nil {
		return nil, err
	}
	buf, frame, err := a.load(path, opts)
	if err != nil {
		return nil, err
	}

	t := thresholds(buf, opts.AutoThresholds, cfg.CannyLower, cfg.CannyUpper)
	cfg = cfg.WithCannyThresholds(t.Lower, t.Upper)
	res := detection.DetectInterfaces(buf, cfg)

	report := &LinesReport{
		LineResult: res,
		Frame:      frame,
		Thresholds: Thresholds{Lower: cfg.CannyLower, Upper: cfg.CannyUpper},
	}
	if opts.Overlay {
		report.img = overlay.Lines(buf.ToImage(), res, ovOpts...)
	}
	return report, nil
}

// Circles runs the selected circle detector on the image at path. The
// circle detectors derive their own edge thresholds, so AutoThresholds has
// no effect here.
func (a *Analyzer) Circles(path string, method CircleMethod, cfg detection.Config, opts Options) (*CirclesReport, error) {
	ovOpts, err := overlayOptions(opts)
	if err != nil {
		return nil, err
	}
	buf, frame, err := a.load(path, opts)
	if err != nil {
		return nil, err
	}

	var res *detection.CircleResult
	switch method {
	case CirclesHough:
		res = detection.DetectCirclesHough(buf, cfg)
	case CirclesBlob:
		res = detection.DetectCirclesBlob(buf, cfg)
	case CirclesAuto, "":
		res = detection.DetectSpheres(buf, cfg)
	default:
		return nil, fmt.Errorf("unknown circle method %q", method)
	}

	report := &CirclesReport{CircleResult: res, Frame: frame}
	if opts.Overlay {
		report.img = overlay.Circles(buf.ToImage(), res, ovOpts...)
	}
	return report, nil
}
