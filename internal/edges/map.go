package edges

import (
	"image"

	"github.com/ironsheep/usgeom/internal/raster"
)

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Map is a binary edge map the same size as its source image.
type Map struct {
	Width  int
	Height int
	Pix    []bool
}

// NewMap allocates an empty edge map.
func NewMap(width, height int) *Map {
	width = max(width, 0)
	height = max(height, 0)
	return &Map{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether (x, y) is an edge. Out-of-range coordinates are not.
func (m *Map) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Set marks or clears (x, y).
func (m *Map) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Pix[y*m.Width+x] = v
}

// Count returns the number of edge pixels.
func (m *Map) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Points returns the coordinates of all edge pixels in row-major order.
func (m *Map) Points() []Point {
	pts := make([]Point, 0, m.Count())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.Pix[y*m.Width+x] {
				pts = append(pts, Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// RowCounts returns the number of edge pixels in each row.
func (m *Map) RowCounts() []int {
	counts := make([]int, m.Height)
	for y := 0; y < m.Height; y++ {
		row := m.Pix[y*m.Width : (y+1)*m.Width]
		for _, v := range row {
			if v {
				counts[y]++
			}
		}
	}
	return counts
}

// ToBuffer renders the map as a gray buffer with edges at 255.
func (m *Map) ToBuffer() *raster.Buffer {
	b := raster.NewGray(m.Width, m.Height)
	for i, v := range m.Pix {
		if v {
			b.Pix[i] = 255
		}
	}
	return b
}

// ToImage renders the map as an *image.Gray with edges in white.
func (m *Map) ToImage() image.Image {
	return m.ToBuffer().ToImage()
}
