package detection

import (
	"log/slog"

	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// contourSmoothing is the Douglas–Peucker tolerance, in pixels, applied
// before measuring circularity. It removes the 8-connected staircase that
// otherwise inflates the perimeter of round shapes by about 5%.
const contourSmoothing = 1.0

// DetectCirclesBlob finds round bright blobs and reports their minimal
// enclosing circles.
//
// # Algorithm
//
//  1. Preprocess, then binarize with Otsu's threshold (foreground = brighter
//     class). Uniform images have no foreground.
//  2. Trace the external contour of every foreground component
//  3. Keep contours whose shoelace area lies in [cfg.Blob.MinArea,
//     cfg.Blob.MaxArea]
//  4. Circularity 4π·A/P² is measured on the smoothed contour; contours at
//     or below cfg.Blob.MinCircularity are dropped
//  5. The minimal enclosing circle of the raw contour is reported together
//     with its circularity
//
// Circles come back in contour discovery order (top to bottom).
func DetectCirclesBlob(b *raster.Buffer, cfg Config) *CircleResult {
	cfg = cfg.Normalize()
	if b.Empty() {
		return newCircleResult(MethodBlobCircles, nil)
	}

	gray := preprocess.Preprocess(b)
	t, ok := otsuThreshold(gray)
	if !ok {
		slog.Debug("Blob detection skipped, image has a single intensity level")
		return newCircleResult(MethodBlobCircles, nil)
	}

	fg := make([]bool, len(gray.Pix))
	for i, v := range gray.Pix {
		fg[i] = v > t
	}
	contours := externalContours(fg, gray.Width, gray.Height)

	var circles []DetectedCircle
	for _, contour := range contours {
		poly := toVecs(contour)
		area := polygonArea(poly)
		if area < cfg.Blob.MinArea || area > cfg.Blob.MaxArea {
			continue
		}

		smooth := simplifyClosed(poly, contourSmoothing)
		circ := circularity(polygonArea(smooth), polygonPerimeter(smooth))
		if circ <= cfg.Blob.MinCircularity {
			continue
		}

		circles = append(circles, DetectedCircle{
			Circle: minEnclosingCircle(poly),
			Shape:  &ShapeQuality{Circularity: circ},
		})
	}

	slog.Debug("Blob circle detection completed",
		"algorithm", MethodBlobCircles,
		"otsu_threshold", t,
		"contours", len(contours),
		"count", len(circles))
	return newCircleResult(MethodBlobCircles, circles)
}
