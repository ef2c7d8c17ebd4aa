package detection

import (
	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/raster"
)

// createBlank returns an all-zero gray buffer.
func createBlank(w, h int) *raster.Buffer {
	return raster.NewGray(w, h)
}

// fillDisk paints a filled disk of value v into a gray buffer.
func fillDisk(b *raster.Buffer, cx, cy, r int, v uint8) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				b.Pix[y*b.Width+x] = v
			}
		}
	}
}

// fillRect paints the half-open rectangle [x0,x1) x [y0,y1).
func fillRect(b *raster.Buffer, x0, y0, x1, y1 int, v uint8) {
	for y := max(y0, 0); y < min(y1, b.Height); y++ {
		for x := max(x0, 0); x < min(x1, b.Width); x++ {
			b.Pix[y*b.Width+x] = v
		}
	}
}

// createDisk returns a w x h black buffer with one white disk.
func createDisk(w, h, cx, cy, r int) *raster.Buffer {
	b := createBlank(w, h)
	fillDisk(b, cx, cy, r, 255)
	return b
}

// createBands returns a buffer whose rows change intensity at each of the
// given boundaries, producing one horizontal step edge per boundary.
func createBands(w, h int, boundaries []int, levels []uint8) *raster.Buffer {
	b := createBlank(w, h)
	for y := 0; y < h; y++ {
		band := 0
		for band < len(boundaries) && y >= boundaries[band] {
			band++
		}
		for x := 0; x < w; x++ {
			b.Pix[y*w+x] = levels[band]
		}
	}
	return b
}

// abs returns |v|.
func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// newEdgeRow returns an edge map with a single horizontal run of edge pixels
// on row y covering [x0, x1).
func newEdgeRow(w, h, y, x0, x1 int) *edges.Map {
	m := edges.NewMap(w, h)
	for x := x0; x < x1; x++ {
		m.Set(x, y, true)
	}
	return m
}
