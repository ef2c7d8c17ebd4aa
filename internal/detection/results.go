package detection

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/ironsheep/usgeom/internal/edges"
)

// Point is an integer pixel coordinate.
type Point = edges.Point

// Method identifies the algorithm that produced a result.
type Method string

// Detection methods.
const (
	MethodHoughLines   Method = "hough_lines"
	MethodRansacLines  Method = "ransac_lines"
	MethodInterfaces   Method = "interfaces"
	MethodHoughCircles Method = "hough_circles"
	MethodBlobCircles  Method = "blob_circles"
)

// Line is a segment between two endpoints in pixel coordinates.
// Angle and length are derived from the endpoints on demand.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Angle returns atan2(y2-y1, x2-x1) in degrees, in (-180, 180].
func (l Line) Angle() float64 {
	return math.Atan2(l.Y2-l.Y1, l.X2-l.X1) * 180 / math.Pi
}

// Length returns the Euclidean distance between the endpoints.
func (l Line) Length() float64 {
	return math.Hypot(l.X2-l.X1, l.Y2-l.Y1)
}

// MarshalJSON adds the derived angle and length to the endpoints.
func (l Line) MarshalJSON() ([]byte, error) {
	type endpoints Line
	return json.Marshal(struct {
		endpoints
		AngleDegrees float64 `json:"angle_degrees"`
		Length       float64 `json:"length"`
	}{
		endpoints:    endpoints(l),
		AngleDegrees: math.Round(l.Angle()*10) / 10,
		Length:       math.Round(l.Length()*10) / 10,
	})
}

// LineSupport is the RANSAC evidence behind a line.
type LineSupport struct {
	// Inliers is the number of edge points within the inlier distance.
	Inliers int `json:"inliers"`

	// Confidence is 100 * Inliers / total edge points of the image.
	Confidence float64 `json:"confidence"`
}

// DetectedLine is a line plus the metric its algorithm produces, if any.
type DetectedLine struct {
	Line    `json:"line"`
	Support *LineSupport `json:"support,omitempty"`
}

// MarshalJSON keeps Line's encoder from being promoted over the whole value.
func (d DetectedLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line    Line         `json:"line"`
		Support *LineSupport `json:"support,omitempty"`
	}{d.Line, d.Support})
}

// LineResult holds the lines found by one detector call, in discovery order.
type LineResult struct {
	Method Method         `json:"method"`
	Lines  []DetectedLine `json:"lines"`
	Count  int            `json:"count"`
}

func newLineResult(m Method, lines []DetectedLine) *LineResult {
	if lines == nil {
		lines = []DetectedLine{}
	}
	return &LineResult{Method: m, Lines: lines, Count: len(lines)}
}

// Longest returns the longest line and true, or false when the result is
// empty. Ties keep the earliest line.
func (r *LineResult) Longest() (DetectedLine, bool) {
	if r == nil || len(r.Lines) == 0 {
		return DetectedLine{}, false
	}
	best := r.Lines[0]
	for _, l := range r.Lines[1:] {
		if l.Length() > best.Length() {
			best = l
		}
	}
	return best, true
}

// Orientation is a coarse line direction class.
type Orientation string

// Orientation classes.
const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
	Diagonal   Orientation = "diagonal"
)

// ClassifyLine buckets a line by the absolute value of its angle:
// below 10° or above 170° is horizontal, 80° to 100° is vertical and
// everything else is diagonal.
func ClassifyLine(l Line) Orientation {
	a := math.Abs(l.Angle())
	switch {
	case a < 10 || a > 170:
		return Horizontal
	case a >= 80 && a <= 100:
		return Vertical
	default:
		return Diagonal
	}
}

// Circle is a center and radius in pixel coordinates.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// ShapeQuality is the contour evidence behind a blob circle.
type ShapeQuality struct {
	// Circularity is 4π·area/perimeter². 1.0 is a perfect circle; values a
	// little above 1 come from discretization and are not clamped.
	Circularity float64 `json:"circularity"`
}

// DetectedCircle is a circle plus the metric its algorithm produces, if any.
type DetectedCircle struct {
	Circle `json:"circle"`
	Shape  *ShapeQuality `json:"shape,omitempty"`
}

// CircleResult holds the circles found by one detector call.
type CircleResult struct {
	Method  Method           `json:"method"`
	Circles []DetectedCircle `json:"circles"`
	Count   int              `json:"count"`
}

func newCircleResult(m Method, circles []DetectedCircle) *CircleResult {
	if circles == nil {
		circles = []DetectedCircle{}
	}
	return &CircleResult{Method: m, Circles: circles, Count: len(circles)}
}

// SortedByRadius returns a copy of the circles ordered largest first.
// The result itself is not modified.
func (r *CircleResult) SortedByRadius() []DetectedCircle {
	if r == nil {
		return []DetectedCircle{}
	}
	out := slices.Clone(r.Circles)
	if out == nil {
		out = []DetectedCircle{}
	}
	slices.SortStableFunc(out, func(a, b DetectedCircle) int {
		switch {
		case a.Radius > b.Radius:
			return -1
		case a.Radius < b.Radius:
			return 1
		}
		return 0
	})
	return out
}
