package preprocess

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"

	"github.com/ironsheep/usgeom/internal/raster"
)

// GaussianBlur smooths a buffer with a size x size Gaussian kernel of the
// given sigma. Even sizes are bumped to the next odd size. A non-positive
// sigma is derived from the size the way most imaging toolkits do it:
// 0.3*((size-1)*0.5-1)+0.8.
//
// Borders replicate the nearest edge pixel. The result is single-channel.
func GaussianBlur(b *raster.Buffer, size int, sigma float64) *raster.Buffer {
	if b.Empty() {
		return raster.NewGray(0, 0)
	}
	src := b
	if src.Channels != 1 {
		src = src.Gray()
	}
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	if sigma <= 0 {
		sigma = 0.3*(float64(size-1)*0.5-1) + 0.8
	}

	k := gaussianKernel(size, sigma)
	// Bias 0.5 turns the library's truncation into rounding.
	blurred := convolution.Convolve(src.ToImage(), k, &convolution.Options{Bias: 0.5, KeepAlpha: true})
	return redChannel(blurred)
}

// gaussianKernel builds a normalized 2-D kernel as the outer product of a
// 1-D Gaussian with itself.
func gaussianKernel(size int, sigma float64) *convolution.Kernel {
	half := size / 2
	line := make([]float64, size)
	var sum float64
	for i := range line {
		d := float64(i - half)
		line[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += line[i]
	}
	for i := range line {
		line[i] /= sum
	}

	k := convolution.NewKernel(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			k.Matrix[y*size+x] = line[y] * line[x]
		}
	}
	return k
}

func redChannel(img *image.RGBA) *raster.Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := raster.NewGray(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			out.Pix[y*w+x] = row[x*4]
		}
	}
	return out
}
