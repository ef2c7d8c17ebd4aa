package detection

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/usgeom/internal/edges"
	"github.com/ironsheep/usgeom/internal/preprocess"
	"github.com/ironsheep/usgeom/internal/raster"
)

// houghSeed fixes the point visiting order so a given edge map always yields
// the same segments.
const houghSeed = 0x9E3779B97F4A7C15

// DetectLinesHough finds line segments with the probabilistic Hough
// transform.
//
// The buffer is preprocessed and run through Canny with cfg.CannyLower and
// cfg.CannyUpper. Edge points are then visited in a pseudo-random but fixed
// order. Each point votes in a (θ, ρ) accumulator at 1° and 1 px resolution
// and is removed from the candidate set. When the point's best bin reaches
// cfg.HoughThreshold, the line through it is walked in both directions,
// tolerating up to cfg.MaxLineGap missing pixels. Segments whose x or y
// extent reaches cfg.MinLineLength are kept and their pixels withdraw their
// votes.
//
// Segments are returned in discovery order. An empty or blank buffer yields
// an empty result.
func DetectLinesHough(b *raster.Buffer, cfg Config) *LineResult {
	cfg = cfg.Normalize()
	if b.Empty() {
		return newLineResult(MethodHoughLines, nil)
	}

	edgeMap := edges.Extract(preprocess.Preprocess(b), cfg.CannyLower, cfg.CannyUpper)
	segments := probabilisticHough(edgeMap, cfg.HoughThreshold, cfg.MinLineLength, cfg.MaxLineGap)

	lines := make([]DetectedLine, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, DetectedLine{Line: s})
	}

	slog.Debug("Hough line detection completed",
		"algorithm", MethodHoughLines,
		"edge_points", edgeMap.Count(),
		"count", len(lines))
	return newLineResult(MethodHoughLines, lines)
}

// probabilisticHough is the progressive probabilistic Hough transform over a
// binary edge map. The map is not modified.
func probabilisticHough(m *edges.Map, threshold, minLength, maxGap int) []Line {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return nil
	}

	const numAngles = 180
	numRho := (w+h)*2 + 1
	rhoOffset := (numRho - 1) / 2

	cosTab := make([]float64, numAngles)
	sinTab := make([]float64, numAngles)
	for n := 0; n < numAngles; n++ {
		theta := float64(n) * math.Pi / numAngles
		cosTab[n] = math.Cos(theta)
		sinTab[n] = math.Sin(theta)
	}

	acc := make([]int, numAngles*numRho)
	mask := make([]bool, len(m.Pix))
	copy(mask, m.Pix)
	points := m.Points()

	rhoIndex := func(x, y, n int) int {
		return int(math.Round(float64(x)*cosTab[n]+float64(y)*sinTab[n])) + rhoOffset
	}

	rng := rand.New(rand.NewPCG(houghSeed, houghSeed>>7))
	var lines []Line

	for count := len(points); count > 0; count-- {
		idx := rng.IntN(count)
		pt := points[idx]
		points[idx] = points[count-1]

		if !mask[pt.Y*w+pt.X] {
			continue
		}

		maxVal, maxN := threshold-1, 0
		for n := 0; n < numAngles; n++ {
			r := rhoIndex(pt.X, pt.Y, n)
			acc[n*numRho+r]++
			if v := acc[n*numRho+r]; v > maxVal {
				maxVal, maxN = v, n
			}
		}
		if maxVal < threshold {
			continue
		}

		// Direction along the line is perpendicular to the normal (cos θ, sin θ).
		a := -sinTab[maxN]
		bb := cosTab[maxN]
		var dx0, dy0 float64
		if math.Abs(a) > math.Abs(bb) {
			dx0 = math.Copysign(1, a)
			dy0 = bb / math.Abs(a)
		} else {
			dy0 = math.Copysign(1, bb)
			dx0 = a / math.Abs(bb)
		}

		var ends [2]Point
		for k := 0; k < 2; k++ {
			ends[k] = pt
			dx, dy := dx0, dy0
			if k == 1 {
				dx, dy = -dx, -dy
			}
			gap := 0
			for step := 0; ; step++ {
				x := int(math.Round(float64(pt.X) + float64(step)*dx))
				y := int(math.Round(float64(pt.Y) + float64(step)*dy))
				if x < 0 || x >= w || y < 0 || y >= h {
					break
				}
				if mask[y*w+x] {
					gap = 0
					ends[k] = Point{X: x, Y: y}
				} else if gap++; gap > maxGap {
					break
				}
			}
		}

		good := absInt(ends[1].X-ends[0].X) >= minLength || absInt(ends[1].Y-ends[0].Y) >= minLength

		for k := 0; k < 2; k++ {
			dx, dy := dx0, dy0
			if k == 1 {
				dx, dy = -dx, -dy
			}
			for step := 0; ; step++ {
				x := int(math.Round(float64(pt.X) + float64(step)*dx))
				y := int(math.Round(float64(pt.Y) + float64(step)*dy))
				if x < 0 || x >= w || y < 0 || y >= h {
					break
				}
				if mask[y*w+x] {
					if good {
						for n := 0; n < numAngles; n++ {
							acc[n*numRho+rhoIndex(x, y, n)]--
						}
					}
					mask[y*w+x] = false
				}
				if x == ends[k].X && y == ends[k].Y {
					break
				}
			}
		}

		if good {
			lines = append(lines, Line{
				X1: float64(ends[0].X), Y1: float64(ends[0].Y),
				X2: float64(ends[1].X), Y2: float64(ends[1].Y),
			})
		}
	}
	return lines
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
