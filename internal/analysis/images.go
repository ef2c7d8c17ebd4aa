package analysis

import (
	"image"

	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/preprocess"
)

// ThresholdReport is the outcome of automatic threshold estimation.
type ThresholdReport struct {
	Thresholds

	Frame Frame `json:"frame"`
}

// EstimateThresholds estimates Canny thresholds for the image at path.
func (a *Analyzer) EstimateThresholds(path string, opts Options) (*ThresholdReport, error) {
	buf, frame, err := a.load(path, opts)
	if err != nil {
		return nil, err
	}
	lo, hi := edges.EstimateThresholds(buf)
	return &ThresholdReport{Thresholds: Thresholds{Lower: lo, Upper: hi}, Frame: frame}, nil
}

// EdgeReport describes a Canny edge map.
type EdgeReport struct {
	Frame      Frame      `json:"frame"`
	Thresholds Thresholds `json:"thresholds"`
	EdgePixels int        `json:"edge_pixels"`

	// EdgeDensity is the fraction of frame pixels that are edges.
	EdgeDensity float64 `json:"edge_density"`

	overlayReport
}

// Edges computes the Canny edge map of the preprocessed image at path with
// the given thresholds, or estimated ones when opts.AutoThresholds is set.
// The edge image is always rendered and available through OverlayImage.
func (a *Analyzer) Edges(path string, lower, upper float64, opts Options) (*EdgeReport, error) {
	buf, frame, err := a.load(path, opts)
	if err != nil {
		return nil, err
	}

	t := thresholds(buf, opts.AutoThresholds, lower, upper)
	m := edges.Extract(preprocess.Preprocess(buf), t.Lower, t.Upper)

	report := &EdgeReport{
		Frame:      frame,
		Thresholds: t,
		EdgePixels: m.Count(),
	}
	if n := m.Width * m.Height; n > 0 {
		report.EdgeDensity = float64(report.EdgePixels) / float64(n)
	}
	report.img = m.ToImage()
	return report, nil
}

// PreprocessReport describes the output of the preprocessing pipeline.
type PreprocessReport struct {
	Frame Frame `json:"frame"`

	overlayReport
}

// Preprocess runs grayscale conversion, CLAHE and the bilateral filter on
// the image at path.
func (a *Analyzer) Preprocess(path string, opts Options) (*PreprocessReport, error) {
	buf, frame, err := a.load(path, opts)
	if err != nil {
		return nil, err
	}
	var img image.Image = preprocess.Preprocess(buf).ToImage()
	return &PreprocessReport{Frame: frame, overlayReport: overlayReport{img: img}}, nil
}
