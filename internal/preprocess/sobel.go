package preprocess

import (
	"math"

	"github.com/ironsheep/usgeom/internal/raster"
)

// Gradient holds per-pixel 3x3 Sobel derivatives in row-major order.
type Gradient struct {
	Width  int
	Height int
	X      []float64
	Y      []float64
}

// Sobel computes horizontal and vertical derivatives with the 3x3 Sobel
// kernels:
//
//	Gx: -1 0 1    Gy: -1 -2 -1
//	    -2 0 2         0  0  0
//	    -1 0 1         1  2  1
//
// Border pixels use replicated edge values.
func Sobel(b *raster.Buffer) *Gradient {
	g := &Gradient{}
	if b.Empty() {
		return g
	}
	src := b
	if src.Channels != 1 {
		src = src.Gray()
	}
	w, h := src.Width, src.Height
	g.Width, g.Height = w, h
	g.X = make([]float64, w*h)
	g.Y = make([]float64, w*h)

	at := func(x, y int) float64 {
		return float64(src.Pix[clamp(y, 0, h-1)*w+clamp(x, 0, w-1)])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			g.X[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			g.Y[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return g
}

// L1 returns |gx|+|gy| at index i.
func (g *Gradient) L1(i int) float64 {
	return math.Abs(g.X[i]) + math.Abs(g.Y[i])
}

// Magnitude8 returns sqrt(gx²+gy²) for every pixel, saturated to the 8-bit
// range [0, 255].
func (g *Gradient) Magnitude8() []float64 {
	out := make([]float64, len(g.X))
	for i := range out {
		out[i] = math.Min(math.Round(math.Hypot(g.X[i], g.Y[i])), 255)
	}
	return out
}
