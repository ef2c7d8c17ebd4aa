package detection

import (
	"github.com/anthonynsimon/bild/histogram"

	"github.com/ironsheep/usgeom/internal/raster"
)

// otsuThreshold implements Otsu's method on an 8-bit gray buffer.
//
// It returns the level t that maximizes the between-class variance of
// {v <= t} and {v > t}. ok is false when no split separates two non-empty
// classes, which is the case for uniform images.
func otsuThreshold(gray *raster.Buffer) (t uint8, ok bool) {
	if gray.Empty() {
		return 0, false
	}
	// Gray images expand to R=G=B, so the red channel is the gray histogram.
	bins := histogram.NewRGBAHistogram(gray.ToImage()).R.Bins
	total := 0
	sum := 0.0
	for i, c := range bins {
		total += c
		sum += float64(i) * float64(c)
	}

	var maxVariance, sumB float64
	best := 0
	wB := 0
	for i, c := range bins {
		wB += c
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(i) * float64(c)
		meanB := sumB / float64(wB)
		meanF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			best = i
		}
	}
	if maxVariance == 0 {
		return 0, false
	}
	return uint8(best), true
}
