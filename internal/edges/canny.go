package edges

import (
	"math"

	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// tan(22.5°) and tan(67.5°), the sector boundaries for non-maximum suppression.
var (
	tan22 = math.Tan(math.Pi / 8)
	tan67 = math.Tan(3 * math.Pi / 8)
)

// Extract runs Canny edge detection on a grayscale buffer.
//
// Parameters:
//   - gray: Source buffer. Color buffers are converted to grayscale first.
//   - lower: Weak-edge threshold on |gx|+|gy|.
//   - upper: Strong-edge threshold. Reversed thresholds are swapped.
//
// Returns an edge map the size of the input. Empty input yields an empty map.
func Extract(gray *raster.Buffer, lower, upper float64) *Map {
	if gray.Empty() {
		return NewMap(0, 0)
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	return ExtractGradient(preprocess.Sobel(gray), lower, upper)
}

// ExtractGradient runs non-maximum suppression and hysteresis on a
// precomputed gradient. The circle detector reuses its gradient for voting,
// so it enters here instead of Extract.
func ExtractGradient(g *preprocess.Gradient, lower, upper float64) *Map {
	w, h := g.Width, g.Height
	m := NewMap(w, h)
	if w < 3 || h < 3 {
		return m
	}

	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = g.L1(i)
	}

	const (
		none uint8 = iota
		weak
		strong
	)
	state := make([]uint8, w*h)
	stack := make([]int, 0, 256)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			v := mag[i]
			if v <= lower {
				continue
			}

			var n1, n2 float64
			ax, ay := math.Abs(g.X[i]), math.Abs(g.Y[i])
			switch {
			case ay <= ax*tan22:
				// horizontal gradient: compare left/right
				n1, n2 = mag[i-1], mag[i+1]
			case ay > ax*tan67:
				// vertical gradient: compare up/down
				n1, n2 = mag[i-w], mag[i+w]
			case (g.X[i] > 0) == (g.Y[i] > 0):
				n1, n2 = mag[i-w-1], mag[i+w+1]
			default:
				n1, n2 = mag[i-w+1], mag[i+w-1]
			}
			if !(v > n1 && v >= n2) {
				continue
			}

			if v > upper {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// Grow strong pixels through 8-connected weak neighbours.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m.Pix[i] = true

		for _, d := range [8]int{-w - 1, -w, -w + 1, -1, 1, w - 1, w, w + 1} {
			j := i + d
			if state[j] == weak {
				state[j] = strong
				stack = append(stack, j)
			}
		}
	}
	return m
}
