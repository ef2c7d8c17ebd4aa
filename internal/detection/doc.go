// Package detection finds lines and circles in ultrasound frames.
//
// Every detector takes a raster.Buffer (grayscale or RGB, 8-bit) and a
// Config, and returns a result value. Inputs are never modified, and an empty
// or featureless image produces an empty result rather than an error.
//
// # Detectors
//
//   - DetectLinesHough: probabilistic Hough transform over a Canny edge map
//   - DetectLinesRansac: iterative RANSAC line fitting with inlier support
//   - DetectInterfaces: horizontal tissue boundaries from the row projection
//     of the edge map
//   - DetectCirclesHough: gradient Hough transform for circles
//   - DetectCirclesBlob: Otsu binarization, external contours, circularity
//     filter and minimal enclosing circle
//   - DetectSpheres: Hough circles with blob detection as a fallback
//
// Each detector runs the shared preprocessing pipeline first (grayscale,
// CLAHE, bilateral filter). See package preprocess.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Angles are measured with atan2(dy, dx) in degrees, so a line pointing down
// the image has a positive angle.
//
// # Configuration
//
// Config carries every tunable. Out-of-range values are clamped by
// Config.Normalize, which each detector applies on entry; only non-finite
// values are rejected, by Config.Validate.
//
// # Determinism
//
// Hough line detection uses a fixed internal seed. RANSAC takes a
// *rand.Rand; pass a seeded generator for reproducible output or nil for a
// randomly seeded one.
package detection
