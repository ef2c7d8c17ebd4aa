package preprocess

import (
	"math"

	"github.com/ironsheep/usgeom/internal/raster"
)

// Bilateral applies an edge-preserving bilateral filter.
//
// Each output pixel is the weighted mean of the input pixels inside a
// circular window of the given diameter, where the weight is the product of a
// spatial Gaussian (sigmaSpace) on the offset and a range Gaussian
// (sigmaColor) on the intensity difference to the center pixel. Pixels
// outside the image replicate the nearest border pixel.
func Bilateral(b *raster.Buffer, diameter int, sigmaColor, sigmaSpace float64) *raster.Buffer {
	if b.Empty() {
		return raster.NewGray(0, 0)
	}
	src := b
	if src.Channels != 1 {
		src = src.Gray()
	}
	if sigmaColor <= 0 {
		sigmaColor = 1
	}
	if sigmaSpace <= 0 {
		sigmaSpace = 1
	}
	radius := diameter / 2
	if diameter <= 0 {
		radius = int(math.Round(sigmaSpace * 1.5))
	}
	radius = max(radius, 1)

	// range weights indexed by absolute intensity difference
	var colorWeight [256]float64
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	type tap struct {
		dx, dy int
		w      float64
	}
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	var taps []tap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := dx*dx + dy*dy
			if r2 > radius*radius {
				continue
			}
			taps = append(taps, tap{dx: dx, dy: dy, w: math.Exp(float64(r2) * spaceCoeff)})
		}
	}

	w, h := src.Width, src.Height
	out := raster.NewGray(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := int(src.Pix[y*w+x])
			var sum, wsum float64
			for _, t := range taps {
				px := clamp(x+t.dx, 0, w-1)
				py := clamp(y+t.dy, 0, h-1)
				v := int(src.Pix[py*w+px])
				diff := v - center
				if diff < 0 {
					diff = -diff
				}
				wt := t.w * colorWeight[diff]
				sum += float64(v) * wt
				wsum += wt
			}
			out.Pix[y*w+x] = clampByte(sum / wsum)
		}
	}
	return out
}

// clamp constrains an integer value to the range [lo, hi].
// Used for replicated-border sampling in the filters.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
