// Package edges turns a grayscale buffer into a binary edge map and
// estimates edge thresholds from image statistics.
//
// # Edge Extraction
//
// Extract is a Canny detector:
//
//  1. 3x3 Sobel derivatives, magnitude |gx|+|gy|
//  2. Non-maximum suppression in one of four direction sectors
//     (0°, 45°, 90°, 135°)
//  3. Double threshold: magnitude > upper is strong, > lower is weak
//  4. Hysteresis: weak pixels survive only when 8-connected, directly or
//     through other weak pixels, to a strong pixel
//
// The input is not smoothed; callers pass preprocessed images.
// The one-pixel image border never contains edges.
//
// # Threshold Estimation
//
// EstimateThresholds derives a (lower, upper) pair from the mean and standard
// deviation of the gradient magnitude of the preprocessed image. The result
// always satisfies 10 <= lower <= 80, 30 <= upper <= 200 and
// upper >= 2*lower.
package edges
