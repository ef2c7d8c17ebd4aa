package detection

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is returned by Config.Validate when a parameter is NaN or
// infinite.
var ErrNonFinite = errors.New("detection: parameter is not a finite number")

// Edge threshold bounds shared by Canny and the circle edge parameter.
const (
	MinEdgeThreshold = 10.0
	MaxEdgeThreshold = 200.0

	MinPeakHeightRatio = 0.05
	MaxPeakHeightRatio = 0.5
)

// BlobParams bounds the contour filter of the blob circle detector.
type BlobParams struct {
	// MinArea and MaxArea bound the contour area in square pixels.
	MinArea float64 `json:"min_area" yaml:"min_area" mapstructure:"min_area"`
	MaxArea float64 `json:"max_area" yaml:"max_area" mapstructure:"max_area"`

	// MinCircularity is the exclusive lower bound on 4π·area/perimeter².
	MinCircularity float64 `json:"min_circularity" yaml:"min_circularity" mapstructure:"min_circularity"`
}

// RansacParams controls the sequential multi-line RANSAC fit.
type RansacParams struct {
	MaxLines          int     `json:"max_lines" yaml:"max_lines" mapstructure:"max_lines"`
	MinInliers        int     `json:"min_inliers" yaml:"min_inliers" mapstructure:"min_inliers"`
	Iterations        int     `json:"iterations" yaml:"iterations" mapstructure:"iterations"`
	MinInlierRatio    float64 `json:"min_inlier_ratio" yaml:"min_inlier_ratio" mapstructure:"min_inlier_ratio"`
	MinSampleDistance float64 `json:"min_sample_distance" yaml:"min_sample_distance" mapstructure:"min_sample_distance"`

	// BaseThreshold and BaselineSize set the inlier distance for a w x h
	// image to BaseThreshold*sqrt(w*h)/BaselineSize pixels (2.6 at 640x480
	// with the defaults).
	BaseThreshold float64 `json:"base_threshold" yaml:"base_threshold" mapstructure:"base_threshold"`
	BaselineSize  float64 `json:"baseline_size" yaml:"baseline_size" mapstructure:"baseline_size"`
}

// DefaultRansacParams returns the standard RANSAC settings.
func DefaultRansacParams() RansacParams {
	return RansacParams{
		MaxLines:          20,
		MinInliers:        50,
		Iterations:        1000,
		MinInlierRatio:    0.02,
		MinSampleDistance: 50,
		BaseThreshold:     3.0,
		BaselineSize:      640,
	}
}

// normalize replaces non-positive and non-finite fields with their defaults.
func (p RansacParams) normalize() RansacParams {
	d := DefaultRansacParams()
	if p.MaxLines <= 0 {
		p.MaxLines = d.MaxLines
	}
	if p.MinInliers <= 0 {
		p.MinInliers = d.MinInliers
	}
	if p.Iterations <= 0 {
		p.Iterations = d.Iterations
	}
	p.MinInlierRatio = positiveOr(p.MinInlierRatio, d.MinInlierRatio)
	p.MinSampleDistance = positiveOr(p.MinSampleDistance, d.MinSampleDistance)
	p.BaseThreshold = positiveOr(p.BaseThreshold, d.BaseThreshold)
	p.BaselineSize = positiveOr(p.BaselineSize, d.BaselineSize)
	return p
}

// Threshold returns the inlier distance for a width x height image.
func (p RansacParams) Threshold(width, height int) float64 {
	return p.BaseThreshold * math.Sqrt(float64(width)*float64(height)) / p.BaselineSize
}

// Config is the parameter bundle every detector receives by value.
//
// Detectors call Normalize on their own copy, so a caller may share one
// Config between goroutines and never sees it modified.
type Config struct {
	// CannyLower and CannyUpper are the hysteresis thresholds used by the
	// line and interface detectors. Both live in [10, 200].
	CannyLower float64 `json:"canny_lower" yaml:"canny_lower" mapstructure:"canny_lower"`
	CannyUpper float64 `json:"canny_upper" yaml:"canny_upper" mapstructure:"canny_upper"`

	// HoughThreshold is the minimum accumulator vote for a line segment.
	HoughThreshold int `json:"hough_threshold" yaml:"hough_threshold" mapstructure:"hough_threshold"`

	// MinLineLength and MaxLineGap shape probabilistic Hough segments.
	MinLineLength int `json:"min_line_length" yaml:"min_line_length" mapstructure:"min_line_length"`
	MaxLineGap    int `json:"max_line_gap" yaml:"max_line_gap" mapstructure:"max_line_gap"`

	// CircleDP is the inverse accumulator resolution of the circle Hough
	// transform. 1 means full resolution, 2 half resolution.
	CircleDP float64 `json:"circle_dp" yaml:"circle_dp" mapstructure:"circle_dp"`

	// CircleMinDist is the minimum distance between detected centers.
	CircleMinDist float64 `json:"circle_min_dist" yaml:"circle_min_dist" mapstructure:"circle_min_dist"`

	// CircleParam1 is the upper Canny threshold of the circle detector; the
	// lower one is half of it.
	CircleParam1 float64 `json:"circle_param1" yaml:"circle_param1" mapstructure:"circle_param1"`

	// CircleParam2 is the accumulator threshold for circle centers.
	CircleParam2 float64 `json:"circle_param2" yaml:"circle_param2" mapstructure:"circle_param2"`

	// MinRadius and MaxRadius bound circle radii. MaxRadius <= 0 means no
	// upper bound beyond the image size.
	MinRadius int `json:"min_radius" yaml:"min_radius" mapstructure:"min_radius"`
	MaxRadius int `json:"max_radius" yaml:"max_radius" mapstructure:"max_radius"`

	// MinPeakHeightRatio is the minimum row-projection peak for an
	// interface, as a fraction of image width. Clamped to [0.05, 0.5].
	MinPeakHeightRatio float64 `json:"min_peak_height_ratio" yaml:"min_peak_height_ratio" mapstructure:"min_peak_height_ratio"`

	Blob   BlobParams   `json:"blob" yaml:"blob" mapstructure:"blob"`
	Ransac RansacParams `json:"ransac" yaml:"ransac" mapstructure:"ransac"`
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		CannyLower:         30,
		CannyUpper:         90,
		HoughThreshold:     100,
		MinLineLength:      50,
		MaxLineGap:         10,
		CircleDP:           1.2,
		CircleMinDist:      80,
		CircleParam1:       100,
		CircleParam2:       20,
		MinRadius:          10,
		MaxRadius:          200,
		MinPeakHeightRatio: 0.15,
		Blob: BlobParams{
			MinArea:        100,
			MaxArea:        10000,
			MinCircularity: 0.6,
		},
		Ransac: DefaultRansacParams(),
	}
}

// Normalize returns a copy with every field clamped into its valid range.
// Out-of-range values are never an error. NaN and infinite values fall back
// to the defaults, except where a field has an upper bound to clamp to.
func (c Config) Normalize() Config {
	d := DefaultConfig()
	c.CannyLower, c.CannyUpper = normalizeThresholds(c.CannyLower, c.CannyUpper)

	c.HoughThreshold = max(c.HoughThreshold, 1)
	c.MinLineLength = max(c.MinLineLength, 0)
	c.MaxLineGap = max(c.MaxLineGap, 0)

	c.CircleDP = atLeast(c.CircleDP, 1.0, d.CircleDP)
	c.CircleMinDist = atLeast(c.CircleMinDist, 1.0, d.CircleMinDist)
	c.CircleParam1 = clampRange(c.CircleParam1, MinEdgeThreshold, MaxEdgeThreshold)
	c.CircleParam2 = atLeast(c.CircleParam2, 1.0, d.CircleParam2)

	c.MinRadius = max(c.MinRadius, 0)
	if c.MaxRadius > 0 && c.MaxRadius < c.MinRadius {
		c.MinRadius, c.MaxRadius = c.MaxRadius, c.MinRadius
	}

	c.MinPeakHeightRatio = clampRange(c.MinPeakHeightRatio, MinPeakHeightRatio, MaxPeakHeightRatio)

	c.Blob.MinArea = atLeast(c.Blob.MinArea, 0, d.Blob.MinArea)
	c.Blob.MaxArea = atLeast(c.Blob.MaxArea, 0, d.Blob.MaxArea)
	if c.Blob.MaxArea < c.Blob.MinArea {
		c.Blob.MinArea, c.Blob.MaxArea = c.Blob.MaxArea, c.Blob.MinArea
	}
	c.Blob.MinCircularity = clampRange(c.Blob.MinCircularity, 0, 1)

	c.Ransac = c.Ransac.normalize()
	return c
}

// Validate reports parameters that cannot be clamped into range because
// they are not numbers at all.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"canny_lower", c.CannyLower},
		{"canny_upper", c.CannyUpper},
		{"circle_dp", c.CircleDP},
		{"circle_min_dist", c.CircleMinDist},
		{"circle_param1", c.CircleParam1},
		{"circle_param2", c.CircleParam2},
		{"min_peak_height_ratio", c.MinPeakHeightRatio},
		{"blob.min_area", c.Blob.MinArea},
		{"blob.max_area", c.Blob.MaxArea},
		{"blob.min_circularity", c.Blob.MinCircularity},
		{"ransac.min_inlier_ratio", c.Ransac.MinInlierRatio},
		{"ransac.min_sample_distance", c.Ransac.MinSampleDistance},
		{"ransac.base_threshold", c.Ransac.BaseThreshold},
		{"ransac.baseline_size", c.Ransac.BaselineSize},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrNonFinite, f.name, f.v)
		}
	}
	return nil
}

// WithMinPeakHeightRatio returns a copy with the interface peak ratio set
// and clamped to [0.05, 0.5].
func (c Config) WithMinPeakHeightRatio(r float64) Config {
	c.MinPeakHeightRatio = clampRange(r, MinPeakHeightRatio, MaxPeakHeightRatio)
	return c
}

// WithCannyThresholds returns a copy with the hysteresis thresholds set,
// clamped to [10, 200] and ordered.
func (c Config) WithCannyThresholds(lower, upper float64) Config {
	c.CannyLower, c.CannyUpper = normalizeThresholds(lower, upper)
	return c
}

// normalizeThresholds clamps both values into [10, 200] and guarantees
// lower < upper.
func normalizeThresholds(lower, upper float64) (float64, float64) {
	lower = clampRange(lower, MinEdgeThreshold, MaxEdgeThreshold)
	upper = clampRange(upper, MinEdgeThreshold, MaxEdgeThreshold)
	if lower > upper {
		lower, upper = upper, lower
	}
	if lower == upper {
		if upper >= MaxEdgeThreshold {
			lower = MaxEdgeThreshold / 2.5
		} else {
			upper = math.Min(MaxEdgeThreshold, 2.5*lower)
		}
	}
	return lower, upper
}

func clampRange(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// atLeast raises v to lo. Non-finite values become def.
func atLeast(v, lo, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return math.Max(v, lo)
}

// positiveOr returns v when it is finite and positive, def otherwise.
func positiveOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}
