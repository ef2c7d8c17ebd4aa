package preprocess

import (
	"github.com/ironsheep/usgeom/internal/raster"
)

// Default pipeline parameters.
const (
	CLAHEClipLimit    = 2.0
	CLAHETileGrid     = 8
	BilateralDiameter = 9
	BilateralSigma    = 75.0
)

// Grayscale returns a single-channel copy of b.
func Grayscale(b *raster.Buffer) *raster.Buffer {
	return b.Gray()
}

// Preprocess converts b to grayscale, equalizes it with CLAHE and applies
// the bilateral filter. An empty input yields an empty buffer.
func Preprocess(b *raster.Buffer) *raster.Buffer {
	if b.Empty() {
		return raster.NewGray(0, 0)
	}
	gray := Grayscale(b)
	eq := CLAHE(gray, CLAHEClipLimit, CLAHETileGrid)
	return Bilateral(eq, BilateralDiameter, BilateralSigma, BilateralSigma)
}
