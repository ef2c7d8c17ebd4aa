package detection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func foreground(w, h int, fill func(x, y int) bool) []bool {
	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fg[y*w+x] = fill(x, y)
		}
	}
	return fg
}

func TestExternalContours_Square(t *testing.T) {
	fg := foreground(30, 30, func(x, y int) bool {
		return x >= 5 && x < 15 && y >= 5 && y < 15
	})

	contours := externalContours(fg, 30, 30)
	require.Len(t, contours, 1)
	c := contours[0]
	assert.Len(t, c, 4)
	assert.Equal(t, Point{X: 5, Y: 5}, c[0])
	assert.ElementsMatch(t, []Point{{5, 5}, {14, 5}, {14, 14}, {5, 14}}, c)
	assert.InDelta(t, 81, polygonArea(toVecs(c)), 1e-9)
}

func TestExternalContours_SinglePixel(t *testing.T) {
	fg := foreground(5, 5, func(x, y int) bool { return x == 2 && y == 2 })
	contours := externalContours(fg, 5, 5)
	require.Len(t, contours, 1)
	assert.Equal(t, []Point{{2, 2}}, contours[0])
}

func TestExternalContours_NestedComponentIgnored(t *testing.T) {
	ring := func(x, y int) bool {
		d := math.Hypot(float64(x-30), float64(y-30))
		return (d >= 10 && d <= 15) || d <= 5
	}

	contours := externalContours(foreground(60, 60, ring), 60, 60)
	assert.Len(t, contours, 1, "the disk inside the ring's hole is not external")

	withBlob := func(x, y int) bool {
		return ring(x, y) || (x >= 50 && x < 56 && y >= 5 && y < 11)
	}
	contours = externalContours(foreground(60, 60, withBlob), 60, 60)
	assert.Len(t, contours, 2)
}

func TestExternalContours_TouchingBorder(t *testing.T) {
	fg := foreground(20, 20, func(x, y int) bool { return x < 4 })
	contours := externalContours(fg, 20, 20)
	require.Len(t, contours, 1)
	assert.InDelta(t, 3*19, polygonArea(toVecs(contours[0])), 1e-9)
}

func TestExternalContours_Empty(t *testing.T) {
	assert.Empty(t, externalContours(nil, 0, 0))
	assert.Empty(t, externalContours(make([]bool, 100), 10, 10))
}

func TestExternalContours_RectangleAreaProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x0 := rapid.IntRange(1, 20).Draw(t, "x0")
		y0 := rapid.IntRange(1, 20).Draw(t, "y0")
		w := rapid.IntRange(2, 15).Draw(t, "w")
		h := rapid.IntRange(2, 15).Draw(t, "h")
		fg := foreground(40, 40, func(x, y int) bool {
			return x >= x0 && x < x0+w && y >= y0 && y < y0+h
		})

		contours := externalContours(fg, 40, 40)
		if len(contours) != 1 {
			t.Fatalf("got %d contours, want 1", len(contours))
		}
		if len(contours[0]) != 4 {
			t.Fatalf("got %d vertices, want 4", len(contours[0]))
		}
		want := float64((w - 1) * (h - 1))
		if got := polygonArea(toVecs(contours[0])); got != want {
			t.Fatalf("area = %v, want %v", got, want)
		}
	})
}

func TestCircularity(t *testing.T) {
	square := []vec{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	assert.InDelta(t, math.Pi/4, circularity(polygonArea(square), polygonPerimeter(square)), 1e-9)
	assert.Equal(t, 0.0, circularity(10, 0))
}

func TestSimplifyClosed(t *testing.T) {
	// A square with midpoints on every side collapses to its corners.
	pts := []vec{{0, 0}, {5, 0}, {10, 0}, {10, 5}, {10, 10}, {5, 10}, {0, 10}, {0, 5}}
	got := simplifyClosed(pts, 1)
	assert.Len(t, got, 4)
	assert.InDelta(t, 100, polygonArea(got), 1e-9)

	// Tolerance zero leaves the polygon alone.
	assert.Len(t, simplifyClosed(pts, 0), len(pts))
}

func TestConvexHull(t *testing.T) {
	pts := []vec{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {2, 2}, {1, 3}, {2, 0}, {0, 0}}
	hull := convexHull(pts)
	assert.ElementsMatch(t, []vec{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, hull)

	assert.Len(t, convexHull([]vec{{1, 1}, {1, 1}}), 1)
}

func TestMinEnclosingCircle(t *testing.T) {
	tests := []struct {
		name string
		pts  []vec
		want Circle
	}{
		{"single point", []vec{{3, 4}}, Circle{X: 3, Y: 4}},
		{"two points", []vec{{0, 0}, {10, 0}}, Circle{X: 5, Y: 0, Radius: 5}},
		{"square", []vec{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}}, Circle{X: 5, Y: 5, Radius: math.Sqrt(50)}},
		{"right triangle", []vec{{0, 0}, {6, 0}, {0, 8}}, Circle{X: 3, Y: 4, Radius: 5}},
		{"obtuse triangle", []vec{{0, 0}, {10, 0}, {5, 1}}, Circle{X: 5, Y: 0, Radius: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := minEnclosingCircle(tt.pts)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Radius, got.Radius, 1e-9)
		})
	}
}

func TestMinEnclosingCircle_ContainsAllPoints(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "n")
		pts := make([]vec, n)
		for i := range pts {
			pts[i] = vec{
				X: float64(rapid.IntRange(-50, 50).Draw(t, "x")),
				Y: float64(rapid.IntRange(-50, 50).Draw(t, "y")),
			}
		}
		c := minEnclosingCircle(pts)
		for _, p := range pts {
			if d := math.Hypot(p.X-c.X, p.Y-c.Y); d > c.Radius+1e-6 {
				t.Fatalf("point %v outside circle %+v by %v", p, c, d-c.Radius)
			}
		}
	})
}
