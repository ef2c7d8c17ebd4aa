// Package overlay draws detection results onto a copy of the source image
// for human review.
//
// Detectors never draw. Callers that want a picture pass the source image
// and a result to Lines or Circles and get back a new *image.NRGBA; the
// source is left untouched. Each line or circle gets its own color from
// Palette so neighbouring results stay distinguishable, and a short label
// is written next to it:
//
//   - lines:      "L1: 30.0°" (index and angle)
//   - interfaces: "Interface"
//   - circles:    "R:25" (radius), plus "C:0.93" (circularity) for blob output
package overlay
