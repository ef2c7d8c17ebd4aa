package edges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// createStep returns a gray buffer with a vertical step edge between
// columns edgeX-1 and edgeX.
func createStep(w, h, edgeX int, lo, hi uint8) *raster.Buffer {
	b := raster.NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := edgeX; x < w; x++ {
			b.Pix[y*w+x] = hi
		}
		for x := 0; x < edgeX; x++ {
			b.Pix[y*w+x] = lo
		}
	}
	return b
}

// syntheticGradient builds a purely horizontal gradient with magnitude
// mags[y] on column x.
func syntheticGradient(w, h, x int, mags []float64) *preprocess.Gradient {
	g := &preprocess.Gradient{Width: w, Height: h, X: make([]float64, w*h), Y: make([]float64, w*h)}
	for y, m := range mags {
		g.X[y*w+x] = m
	}
	return g
}

func TestExtract_VerticalStep(t *testing.T) {
	m := Extract(createStep(20, 12, 10, 0, 200), 30, 90)
	require.Equal(t, 20, m.Width)
	require.Equal(t, 12, m.Height)

	// Thin edge on the dark side of the step, one pixel wide.
	for y := 1; y < 11; y++ {
		assert.True(t, m.At(9, y), "row %d", y)
		assert.False(t, m.At(10, y), "row %d", y)
	}
	assert.Equal(t, 10, m.Count())
}

func TestExtract_BorderNeverEdge(t *testing.T) {
	m := Extract(createStep(20, 12, 10, 0, 200), 30, 90)
	for x := 0; x < m.Width; x++ {
		assert.False(t, m.At(x, 0))
		assert.False(t, m.At(x, m.Height-1))
	}
	for y := 0; y < m.Height; y++ {
		assert.False(t, m.At(0, y))
		assert.False(t, m.At(m.Width-1, y))
	}
}

func TestExtract_SwappedThresholds(t *testing.T) {
	b := createStep(20, 12, 10, 0, 200)
	assert.Equal(t, Extract(b, 30, 90).Pix, Extract(b, 90, 30).Pix)
}

func TestExtract_FlatImageHasNoEdges(t *testing.T) {
	b := raster.NewGray(16, 16)
	assert.Equal(t, 0, Extract(b, 30, 90).Count())
}

func TestExtract_Empty(t *testing.T) {
	m := Extract(raster.NewGray(0, 0), 30, 90)
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.Points())
}

func TestExtractGradient_Hysteresis(t *testing.T) {
	const w, h = 20, 12
	g := syntheticGradient(w, h, 5, []float64{0, 300, 60, 60, 60, 60, 60, 60, 60, 60, 60, 0})
	// Weak-only column elsewhere.
	for y := 1; y < h-1; y++ {
		g.X[y*w+15] = 60
	}

	m := ExtractGradient(g, 50, 200)
	for y := 1; y < h-1; y++ {
		assert.True(t, m.At(5, y), "connected weak pixel at row %d dropped", y)
		assert.False(t, m.At(15, y), "isolated weak pixel at row %d kept", y)
	}
}

func TestExtractGradient_GapBreaksChain(t *testing.T) {
	const w, h = 10, 12
	g := syntheticGradient(w, h, 5, []float64{0, 300, 60, 60, 0, 60, 60, 60, 60, 60, 60, 0})

	m := ExtractGradient(g, 50, 200)
	assert.True(t, m.At(5, 3))
	assert.False(t, m.At(5, 4))
	for y := 5; y < h-1; y++ {
		assert.False(t, m.At(5, y), "row %d", y)
	}
}

func TestMap_Helpers(t *testing.T) {
	m := NewMap(4, 3)
	m.Set(1, 0, true)
	m.Set(3, 2, true)
	m.Set(9, 9, true) // ignored

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []Point{{1, 0}, {3, 2}}, m.Points())
	assert.Equal(t, []int{1, 0, 1}, m.RowCounts())
	assert.False(t, m.At(-1, 0))

	b := m.ToBuffer()
	assert.Equal(t, uint8(255), b.At(1, 0, 0))
	assert.Equal(t, uint8(0), b.At(0, 0, 0))
}
