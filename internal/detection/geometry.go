package detection

import (
	"math"
	"sort"
)

// vec is a floating-point 2-D point used by the contour geometry helpers.
type vec struct {
	X, Y float64
}

func toVecs(pts []Point) []vec {
	out := make([]vec, len(pts))
	for i, p := range pts {
		out[i] = vec{X: float64(p.X), Y: float64(p.Y)}
	}
	return out
}

// polygonArea is the absolute shoelace area of a closed polygon.
func polygonArea(pts []vec) float64 {
	if len(pts) < 3 {
		return 0
	}
	var s float64
	for i := range pts {
		j := (i + 1) % len(pts)
		s += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(s) / 2
}

// polygonPerimeter is the length of a closed polygon.
func polygonPerimeter(pts []vec) float64 {
	if len(pts) < 2 {
		return 0
	}
	var p float64
	for i := range pts {
		j := (i + 1) % len(pts)
		p += math.Hypot(pts[j].X-pts[i].X, pts[j].Y-pts[i].Y)
	}
	return p
}

// circularity is 4π·area/perimeter², 0 for degenerate shapes.
func circularity(area, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// simplifyClosed reduces a closed polygon with Douglas–Peucker. The polygon
// is split at the vertex farthest from the first one so both halves are
// simplified as open chains.
func simplifyClosed(pts []vec, epsilon float64) []vec {
	n := len(pts)
	if n <= 3 || epsilon <= 0 {
		return append([]vec(nil), pts...)
	}

	far, farDist := 0, -1.0
	for i := 1; i < n; i++ {
		if d := math.Hypot(pts[i].X-pts[0].X, pts[i].Y-pts[0].Y); d > farDist {
			far, farDist = i, d
		}
	}

	// Chain 0..far..n where index n wraps back to 0.
	ring := append(append([]vec(nil), pts...), pts[0])
	keep := make([]bool, n+1)
	keep[0], keep[far], keep[n] = true, true, true
	dpSimplify(ring, 0, far, epsilon, keep)
	dpSimplify(ring, far, n, epsilon, keep)

	out := make([]vec, 0, n)
	for i := 0; i < n; i++ {
		if keep[i] {
			out = append(out, ring[i])
		}
	}
	return out
}

func dpSimplify(pts []vec, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist, index := -1.0, -1
	for i := start + 1; i < end; i++ {
		if d := segmentDistance(pts[i], pts[start], pts[end]); d > maxDist {
			maxDist, index = d, i
		}
	}
	if maxDist > eps {
		keep[index] = true
		dpSimplify(pts, start, index, eps, keep)
		dpSimplify(pts, index, end, eps, keep)
	}
}

// segmentDistance is the distance from p to the line through a and b, or
// to a when the two coincide.
func segmentDistance(p, a, b vec) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	if vx == 0 && vy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs((p.X-a.X)*vy-(p.Y-a.Y)*vx) / math.Hypot(vx, vy)
}

// convexHull computes the hull with the monotone chain algorithm, in
// counter-clockwise order without repeating the first point.
func convexHull(pts []vec) []vec {
	p := append([]vec(nil), pts...)
	sort.Slice(p, func(i, j int) bool {
		if p[i].X != p[j].X {
			return p[i].X < p[j].X
		}
		return p[i].Y < p[j].Y
	})
	q := p[:0]
	for i, pt := range p {
		if i == 0 || pt != q[len(q)-1] {
			q = append(q, pt)
		}
	}
	p = q
	if len(p) <= 2 {
		return p
	}

	cross := func(o, a, b vec) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]vec, 0, 2*len(p))
	for _, pt := range p {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(p) - 2; i >= 0; i-- {
		pt := p[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], pt) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	return hull[:len(hull)-1]
}

// minEnclosingCircle returns the smallest circle containing every point,
// computed incrementally over the convex hull.
func minEnclosingCircle(pts []vec) Circle {
	hull := convexHull(pts)
	if len(hull) == 0 {
		return Circle{}
	}

	const eps = 1e-7
	c := Circle{X: hull[0].X, Y: hull[0].Y}
	inside := func(c Circle, p vec) bool {
		return math.Hypot(p.X-c.X, p.Y-c.Y) <= c.Radius+eps
	}

	for i := 1; i < len(hull); i++ {
		if inside(c, hull[i]) {
			continue
		}
		c = Circle{X: hull[i].X, Y: hull[i].Y}
		for j := 0; j < i; j++ {
			if inside(c, hull[j]) {
				continue
			}
			c = circleFrom2(hull[i], hull[j])
			for k := 0; k < j; k++ {
				if !inside(c, hull[k]) {
					c = circleFrom3(hull[i], hull[j], hull[k])
				}
			}
		}
	}
	return c
}

func circleFrom2(a, b vec) Circle {
	return Circle{
		X:      (a.X + b.X) / 2,
		Y:      (a.Y + b.Y) / 2,
		Radius: math.Hypot(a.X-b.X, a.Y-b.Y) / 2,
	}
}

// circleFrom3 is the circumcircle, or the widest two-point circle when the
// points are collinear.
func circleFrom3(a, b, c vec) Circle {
	bx, by := b.X-a.X, b.Y-a.Y
	cx, cy := c.X-a.X, c.Y-a.Y
	d := 2 * (bx*cy - by*cx)
	if math.Abs(d) < 1e-12 {
		best := circleFrom2(a, b)
		for _, alt := range []Circle{circleFrom2(a, c), circleFrom2(b, c)} {
			if alt.Radius > best.Radius {
				best = alt
			}
		}
		return best
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Circle{X: a.X + ux, Y: a.Y + uy, Radius: math.Hypot(ux, uy)}
}
