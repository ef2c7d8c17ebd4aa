package detection

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// DetectLinesRansac finds lines with sequential multi-model RANSAC.
//
// The buffer is preprocessed and run through Canny with cfg.CannyLower and
// cfg.CannyUpper; the edge pixels are then handed to FitLinesRansac with
// cfg.Ransac.
//
// rng drives the sampling. Pass a seeded generator for reproducible output;
// nil draws a freshly seeded generator for this call only.
func DetectLinesRansac(b *raster.Buffer, cfg Config, rng *rand.Rand) *LineResult {
	cfg = cfg.Normalize()
	if b.Empty() {
		return newLineResult(MethodRansacLines, nil)
	}

	edgeMap := edges.Extract(preprocess.Preprocess(b), cfg.CannyLower, cfg.CannyUpper)
	return FitLinesRansac(edgeMap.Points(), b.Width, b.Height, cfg.Ransac, rng)
}

// FitLinesRansac extracts up to p.MaxLines lines from an edge point set.
//
// # Algorithm
//
// Each round runs p.Iterations trials. A trial draws two points, skips pairs
// closer than p.MinSampleDistance, and counts the points whose perpendicular
// distance to the line through the pair is below
//
//	p.BaseThreshold * sqrt(width*height) / p.BaselineSize
//
// The pair with the most inliers wins the round. Rounds stop when fewer than
// p.MinInliers points remain, when the winner has fewer than p.MinInliers
// inliers, or when the winner explains less than p.MinInlierRatio of the
// original point count. Otherwise the line is extended through the sample
// midpoint to the image border, clipped to the image, emitted with its
// inlier count and confidence (percent of all original points), and its
// inliers are removed before the next round.
//
// Lines come back in discovery order, so the best-supported line is first.
// Fewer than two points yield an empty result.
func FitLinesRansac(points []Point, width, height int, p RansacParams, rng *rand.Rand) *LineResult {
	p = p.normalize()
	if len(points) < 2 || width <= 0 || height <= 0 {
		return newLineResult(MethodRansacLines, nil)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	threshold := p.Threshold(width, height)
	total := len(points)

	working := make([]Point, total)
	copy(working, points)

	var lines []DetectedLine
	for round := 0; round < p.MaxLines && len(working) > p.MinInliers; round++ {
		p1, p2, best := bestSample(working, p, threshold, rng)
		if best < p.MinInliers {
			break
		}
		if float64(best)/float64(total) < p.MinInlierRatio {
			break
		}

		vx, vy := unitDirection(p1, p2)
		line := extendToBorder(p1, p2, vx, vy, width, height)

		remaining := working[:0]
		inliers := 0
		for _, pt := range working {
			if perpendicularDistance(pt, p1, vx, vy) < threshold {
				inliers++
				continue
			}
			remaining = append(remaining, pt)
		}
		working = remaining

		lines = append(lines, DetectedLine{
			Line: line,
			Support: &LineSupport{
				Inliers:    inliers,
				Confidence: 100 * float64(inliers) / float64(total),
			},
		})
		slog.Debug("RANSAC line accepted",
			"round", round,
			"inliers", inliers,
			"remaining", len(working),
			"angle", line.Angle())
	}

	slog.Debug("RANSAC line detection completed",
		"algorithm", MethodRansacLines,
		"edge_points", total,
		"threshold", threshold,
		"count", len(lines))
	return newLineResult(MethodRansacLines, lines)
}

// bestSample runs one round of trials and returns the winning pair and its
// inlier count.
func bestSample(pts []Point, p RansacParams, threshold float64, rng *rand.Rand) (Point, Point, int) {
	var bestP1, bestP2 Point
	best := 0
	n := len(pts)

	for it := 0; it < p.Iterations; it++ {
		p1 := pts[rng.IntN(n)]
		p2 := pts[rng.IntN(n)]

		dx := float64(p2.X - p1.X)
		dy := float64(p2.Y - p1.Y)
		if math.Hypot(dx, dy) < p.MinSampleDistance {
			continue
		}

		vx, vy := unitDirection(p1, p2)
		count := 0
		for _, pt := range pts {
			if perpendicularDistance(pt, p1, vx, vy) < threshold {
				count++
			}
		}
		if count > best {
			best, bestP1, bestP2 = count, p1, p2
		}
	}
	return bestP1, bestP2, best
}

func unitDirection(p1, p2 Point) (float64, float64) {
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	d := math.Hypot(dx, dy)
	if d == 0 {
		return 1, 0
	}
	return dx / d, dy / d
}

// perpendicularDistance is |cross(pt-p1, v)| for unit v.
func perpendicularDistance(pt, p1 Point, vx, vy float64) float64 {
	return math.Abs(float64(pt.Y-p1.Y)*vx - float64(pt.X-p1.X)*vy)
}

// extendToBorder stretches the line through the midpoint of p1 and p2 to the
// image border along its dominant axis, then clips both endpoints into
// [0, width-1] x [0, height-1].
func extendToBorder(p1, p2 Point, vx, vy float64, width, height int) Line {
	mx := float64(p1.X+p2.X) / 2
	my := float64(p1.Y+p2.Y) / 2
	maxX := float64(width - 1)
	maxY := float64(height - 1)

	var l Line
	if math.Abs(vx) > math.Abs(vy) {
		l.X1, l.X2 = 0, maxX
		l.Y1 = my + (0-mx)/vx*vy
		l.Y2 = my + (maxX-mx)/vx*vy
	} else {
		l.Y1, l.Y2 = 0, maxY
		l.X1 = mx + (0-my)/vy*vx
		l.X2 = mx + (maxY-my)/vy*vx
	}

	l.X1 = clampRange(l.X1, 0, maxX)
	l.X2 = clampRange(l.X2, 0, maxX)
	l.Y1 = clampRange(l.Y1, 0, maxY)
	l.Y2 = clampRange(l.Y2, 0, maxY)
	return l
}
