// Package preprocess implements the image conditioning stage that runs ahead
// of every detector.
//
// Ultrasound frames carry multiplicative speckle noise and large regional
// differences in gain. The standard pipeline therefore has three steps:
//
//  1. Grayscale conversion (ITU-R BT.601 luminance; single-channel input
//     passes through unchanged)
//
//  2. CLAHE: contrast-limited adaptive histogram equalization on an 8x8 tile
//     grid with clip limit 2.0, bilinearly interpolated between tiles
//
//  3. Bilateral filtering (9 pixel diameter, sigma 75 in both intensity and
//     space), which smooths speckle while keeping step edges sharp
//
// Preprocess runs all three. The individual stages are exported for callers
// that need a different chain, for example the circle detector which adds a
// 9x9 Gaussian blur on top.
//
// # Purity
//
// Every function returns a new buffer. Inputs are never modified.
//
// # Idempotence
//
// Preprocess(Preprocess(b)) is generally not equal to Preprocess(b).
// Histogram equalization is not idempotent and tests must not assume it is.
package preprocess
