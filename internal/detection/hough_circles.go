package detection

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// Gaussian smoothing applied ahead of circle voting.
const (
	circleBlurSize  = 9
	circleBlurSigma = 2.0
)

// DetectCirclesHough finds circles with the gradient Hough transform.
//
// Parameters (from cfg):
//   - CircleDP: inverse accumulator resolution. 1.2 means the center
//     accumulator has 1/1.2 the image resolution.
//   - CircleParam1: upper Canny threshold; the lower one is half of it.
//   - CircleParam2: minimum votes for a center and minimum edge support for
//     its radius.
//   - CircleMinDist: centers closer than this to an accepted circle are
//     dropped.
//   - MinRadius, MaxRadius: radius search range.
//
// # Algorithm
//
//  1. Preprocess, then a 9x9 Gaussian blur (sigma 2)
//  2. Canny edges and Sobel gradient of the blurred image
//  3. Every edge pixel votes along its gradient line, in both directions,
//     for centers between MinRadius and MaxRadius away
//  4. Accumulator local maxima above CircleParam2 become candidate centers,
//     strongest first
//  5. For each candidate, the edge-point distance histogram picks the radius
//     with the best support per unit radius
//
// Circles come back in order of center votes. No quality metric is attached.
func DetectCirclesHough(b *raster.Buffer, cfg Config) *CircleResult {
	cfg = cfg.Normalize()
	if b.Empty() {
		return newCircleResult(MethodHoughCircles, nil)
	}

	blurred := preprocess.GaussianBlur(preprocess.Preprocess(b), circleBlurSize, circleBlurSigma)
	grad := preprocess.Sobel(blurred)
	edgeMap := edges.ExtractGradient(grad, cfg.CircleParam1/2, cfg.CircleParam1)

	w, h := b.Width, b.Height
	minR := cfg.MinRadius
	maxR := cfg.MaxRadius
	if maxR <= 0 {
		maxR = max(w, h)
	}

	points := edgeMap.Points()
	acc, accW, accH := voteCenters(points, grad, w, h, cfg.CircleDP, minR, maxR)
	centers := findCenters(acc, accW, accH, cfg.CircleParam2)

	var circles []DetectedCircle
	minDist2 := cfg.CircleMinDist * cfg.CircleMinDist
	for _, c := range centers {
		cx := (float64(c%accW) + 0.5) * cfg.CircleDP
		cy := (float64(c/accW) + 0.5) * cfg.CircleDP

		tooClose := false
		for _, d := range circles {
			dx, dy := d.X-cx, d.Y-cy
			if dx*dx+dy*dy < minDist2 {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		r, support := estimateRadius(points, cx, cy, minR, maxR)
		if float64(support) <= cfg.CircleParam2 {
			continue
		}
		circles = append(circles, DetectedCircle{Circle: Circle{X: cx, Y: cy, Radius: r}})
	}

	slog.Debug("Hough circle detection completed",
		"algorithm", MethodHoughCircles,
		"edge_points", len(points),
		"candidates", len(centers),
		"count", len(circles))
	return newCircleResult(MethodHoughCircles, circles)
}

// voteCenters accumulates gradient-line votes at resolution 1/dp.
func voteCenters(points []Point, g *preprocess.Gradient, w, h int, dp float64, minR, maxR int) ([]int, int, int) {
	idp := 1 / dp
	accW := int(math.Ceil(float64(w)*idp)) + 2
	accH := int(math.Ceil(float64(h)*idp)) + 2
	acc := make([]int, accW*accH)

	for _, p := range points {
		i := p.Y*w + p.X
		gx, gy := g.X[i], g.Y[i]
		mag := math.Hypot(gx, gy)
		if mag == 0 {
			continue
		}
		ux, uy := gx/mag, gy/mag

		for _, sign := range [2]float64{1, -1} {
			for r := minR; r <= maxR; r++ {
				cx := (float64(p.X) + sign*float64(r)*ux) * idp
				cy := (float64(p.Y) + sign*float64(r)*uy) * idp
				if cx < 0 || cy < 0 {
					break
				}
				ix, iy := int(cx), int(cy)
				if ix >= accW || iy >= accH {
					break
				}
				acc[iy*accW+ix]++
			}
		}
	}
	return acc, accW, accH
}

// findCenters returns accumulator indices that are local maxima above
// threshold, sorted by votes descending.
func findCenters(acc []int, accW, accH int, threshold float64) []int {
	var centers []int
	for y := 1; y < accH-1; y++ {
		for x := 1; x < accW-1; x++ {
			i := y*accW + x
			v := acc[i]
			if float64(v) > threshold &&
				v > acc[i-1] && v >= acc[i+1] &&
				v > acc[i-accW] && v >= acc[i+accW] {
				centers = append(centers, i)
			}
		}
	}
	sort.SliceStable(centers, func(a, b int) bool {
		return acc[centers[a]] > acc[centers[b]]
	})
	return centers
}

// estimateRadius picks the radius in [minR, maxR] whose 3-pixel-wide
// distance band holds the most edge points per unit radius. It returns the
// mean distance of the points in that band and their count.
func estimateRadius(points []Point, cx, cy float64, minR, maxR int) (float64, int) {
	n := maxR - minR + 1
	if n <= 0 {
		return 0, 0
	}
	hist := make([]float64, n)
	sums := make([]float64, n)
	for _, p := range points {
		d := math.Hypot(float64(p.X)-cx, float64(p.Y)-cy)
		bin := int(math.Round(d)) - minR
		if bin < 0 || bin >= n {
			continue
		}
		hist[bin]++
		sums[bin] += d
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = bandSum(hist, i) / math.Max(float64(minR+i), 1)
	}
	best := floats.MaxIdx(scores)

	support := bandSum(hist, best)
	if support == 0 {
		return float64(minR + best), 0
	}
	return bandSum(sums, best) / support, int(support)
}

// bandSum adds v[i-1..i+1], ignoring indices out of range.
func bandSum(v []float64, i int) float64 {
	lo := max(i-1, 0)
	hi := min(i+2, len(v))
	return floats.Sum(v[lo:hi])
}
