package edges

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// Default and bounding values for estimated thresholds.
const (
	DefaultLower = 30.0
	DefaultUpper = 90.0

	minLower = 10.0
	maxLower = 80.0
	minUpper = 30.0
	maxUpper = 200.0
)

// EstimateThresholds derives Canny thresholds from gradient statistics.
//
// The buffer is preprocessed, its Sobel gradient magnitude is computed and
// saturated to 8 bits, and the population mean μ and standard deviation σ
// of that magnitude give:
//
//	lower = max(15, μ - 0.5σ)
//	upper = μ + 1.5σ, raised to 2.5*lower if below 2*lower
//
// lower is then clamped to [10, 80] and upper to [30, 200]. An empty buffer
// yields the defaults (30, 90).
func EstimateThresholds(b *raster.Buffer) (lower, upper float64) {
	if b.Empty() {
		return DefaultLower, DefaultUpper
	}

	mag := preprocess.Sobel(preprocess.Preprocess(b)).Magnitude8()
	mean, std := stat.PopMeanStdDev(mag, nil)

	lower = max(15, mean-0.5*std)
	upper = mean + 1.5*std
	if upper < 2*lower {
		upper = 2.5 * lower
	}

	lower = clampFloat(lower, minLower, maxLower)
	upper = clampFloat(upper, minUpper, maxUpper)
	return lower, upper
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
