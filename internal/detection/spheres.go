package detection

import (
	"log/slog"

	"github.com/ironsheep/usgeom/internal/raster"
)

// DetectSpheres looks for calibration spheres. It runs the Hough circle
// detector and falls back to blob detection when Hough finds nothing.
// The returned result's Method tells which detector answered.
func DetectSpheres(b *raster.Buffer, cfg Config) *CircleResult {
	res := DetectCirclesHough(b, cfg)
	if res.Count > 0 {
		return res
	}
	slog.Debug("No Hough circles found, falling back to blob detection")
	return DetectCirclesBlob(b, cfg)
}
