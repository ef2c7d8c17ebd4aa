package detection

import (
	"log/slog"

	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// DetectInterfaces finds horizontal tissue interfaces.
//
// The edge map of the preprocessed image is projected onto the rows. A row
// is an interface when its edge count is strictly greater than both
// neighbouring rows and than int(width * cfg.MinPeakHeightRatio). Each
// interface is reported as a full-width line (0, y)-(width-1, y), ordered
// top to bottom.
func DetectInterfaces(b *raster.Buffer, cfg Config) *LineResult {
	cfg = cfg.Normalize()
	if b.Empty() {
		return newLineResult(MethodInterfaces, nil)
	}

	edgeMap := edges.Extract(preprocess.Preprocess(b), cfg.CannyLower, cfg.CannyUpper)
	rows := edgeMap.RowCounts()
	minHeight := int(float64(b.Width) * cfg.MinPeakHeightRatio)

	var lines []DetectedLine
	for _, y := range findPeaks(rows, minHeight) {
		lines = append(lines, DetectedLine{Line: Line{
			X1: 0, Y1: float64(y),
			X2: float64(b.Width - 1), Y2: float64(y),
		}})
	}

	slog.Debug("Interface detection completed",
		"algorithm", MethodInterfaces,
		"min_peak_height", minHeight,
		"count", len(lines))
	return newLineResult(MethodInterfaces, lines)
}

// findPeaks returns the indices of strict interior local maxima above
// minHeight, ascending.
func findPeaks(signal []int, minHeight int) []int {
	var peaks []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] > minHeight && signal[i] > signal[i-1] && signal[i] > signal[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}
