// Package analysis runs detectors on image files for the command line and
// the MCP server.
//
// An Analyzer loads frames through a shared raster.ImageCache, applies the
// optional region of interest and downscale, resolves automatic Canny
// thresholds and renders overlays. The detectors themselves live in package
// detection and never see files.
package analysis

import (
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"

	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/raster"
)

// Region is a region of interest in source pixel coordinates. X2 and Y2 are
// exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Options are the per-call knobs shared by every analysis.
type Options struct {
	// ROI restricts detection to a region. Coordinates in the report are
	// relative to the region's top-left corner.
	ROI *Region

	// MaxDim downsizes frames whose larger side exceeds it. Zero disables.
	MaxDim int

	// AutoThresholds replaces the configured Canny thresholds with
	// edges.EstimateThresholds of the frame.
	AutoThresholds bool

	// Seed makes RANSAC reproducible. Nil draws a random seed.
	Seed *uint64

	// Overlay renders the result onto the frame.
	Overlay bool

	// OverlayColor, when set, replaces the per-index palette.
	OverlayColor string

	// GridSpacing adds a coordinate grid to the overlay.
	GridSpacing int
}

// Thresholds is a Canny threshold pair.
type Thresholds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Frame describes the pixels a report refers to.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Offset is the ROI origin in source coordinates.
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`

	// Scale is frame pixels per source pixel; 1 unless MaxDim applied.
	Scale float64 `json:"scale"`
}

// Analyzer runs detectors against image files.
type Analyzer struct {
	cache *raster.ImageCache
}

// New creates an analyzer. A nil cache gets a private one.
func New(cache *raster.ImageCache) *Analyzer {
	if cache == nil {
		cache = raster.NewImageCache()
	}
	return &Analyzer{cache: cache}
}

// Cache returns the image cache used by the analyzer.
func (a *Analyzer) Cache() *raster.ImageCache {
	return a.cache
}

// Info returns metadata for an image file.
func (a *Analyzer) Info(path string) (*raster.ImageInfo, error) {
	return raster.LoadImageInfo(a.cache, path)
}

// load returns the frame buffer for path after ROI and downscale.
func (a *Analyzer) load(path string, opts Options) (*raster.Buffer, Frame, error) {
	buf, err := a.cache.LoadBuffer(path)
	if err != nil {
		return nil, Frame{}, err
	}

	frame := Frame{Scale: 1}
	if opts.ROI != nil {
		rect := opts.ROI.Rect()
		buf, err = raster.Crop(buf, rect)
		if err != nil {
			return nil, Frame{}, fmt.Errorf("region of interest: %w", err)
		}
		// Crop clips to the frame, so the origin is never negative.
		frame.OffsetX, frame.OffsetY = max(rect.Min.X, 0), max(rect.Min.Y, 0)
	}

	buf, frame.Scale = raster.Fit(buf, opts.MaxDim)
	frame.Width, frame.Height = buf.Width, buf.Height

	slog.Debug("Frame loaded",
		"path", path,
		"width", frame.Width,
		"height", frame.Height,
		"channels", buf.Channels,
		"scale", frame.Scale)
	return buf, frame, nil
}

// thresholds picks the Canny pair for buf: estimated when auto is set,
// otherwise the configured one.
func thresholds(buf *raster.Buffer, auto bool, lower, upper float64) Thresholds {
	if !auto {
		return Thresholds{Lower: lower, Upper: upper}
	}
	lo, hi := edges.EstimateThresholds(buf)
	slog.Debug("Estimated Canny thresholds", "lower", lo, "upper", hi)
	return Thresholds{Lower: lo, Upper: hi}
}

// rng returns the RANSAC generator for opts.
func rng(opts Options) *rand.Rand {
	if opts.Seed == nil {
		return nil
	}
	return rand.New(rand.NewPCG(*opts.Seed, *opts.Seed^0x5DEECE66D))
}
