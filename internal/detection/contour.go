package detection

// Clockwise 8-neighbourhood in image coordinates: E, SE, S, SW, W, NW, N, NE.
var (
	nbrDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	nbrDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// externalContours returns the outer boundary of every 8-connected
// foreground component that is not nested inside a hole of another
// component. Each contour is a closed polygon of pixel centers with
// collinear runs compressed to their end points, traced clockwise.
func externalContours(fg []bool, w, h int) [][]Point {
	if w == 0 || h == 0 {
		return nil
	}

	outside := outsideBackground(fg, w, h)
	labels := make([]int, w*h)
	stack := make([]int, 0, 256)
	var contours [][]Point

	label := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !fg[i] || labels[i] != 0 {
				continue
			}
			label++

			// Flood fill the component; the seed is its topmost-leftmost pixel.
			external := false
			stack = append(stack[:0], i)
			labels[i] = label
			for len(stack) > 0 {
				j := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := j%w, j/w
				if px == 0 || py == 0 || px == w-1 || py == h-1 {
					external = true
				}
				for k := 0; k < 8; k++ {
					nx, ny := px+nbrDX[k], py+nbrDY[k]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if fg[n] {
						if labels[n] == 0 {
							labels[n] = label
							stack = append(stack, n)
						}
					} else if k%2 == 0 && outside[n] {
						external = true
					}
				}
			}

			if external {
				contours = append(contours, traceBoundary(labels, w, h, label, x, y))
			}
		}
	}
	return contours
}

// outsideBackground marks background pixels 4-connected to the image border.
func outsideBackground(fg []bool, w, h int) []bool {
	outside := make([]bool, w*h)
	var stack []int
	push := func(x, y int) {
		i := y*w + x
		if !fg[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}
	return outside
}

// traceBoundary follows the outer boundary of a labeled component with
// Moore-neighbour tracing, starting at its topmost-leftmost pixel (sx, sy).
func traceBoundary(labels []int, w, h, label, sx, sy int) []Point {
	is := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == label
	}

	pts := make([]Point, 0, 64)
	add := func(p Point) {
		n := len(pts)
		if n > 0 && pts[n-1] == p {
			return
		}
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	// next searches clockwise around cur starting after the backtrack
	// direction and returns the next boundary pixel plus the new backtrack
	// direction as seen from that pixel.
	next := func(cur Point, back int) (Point, int, bool) {
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			nx, ny := cur.X+nbrDX[d], cur.Y+nbrDY[d]
			if is(nx, ny) {
				prev := (d + 7) % 8
				bx, by := cur.X+nbrDX[prev], cur.Y+nbrDY[prev]
				return Point{X: nx, Y: ny}, dirTo(nx, ny, bx, by), true
			}
		}
		return cur, back, false
	}

	start := Point{X: sx, Y: sy}
	add(start)

	const west = 4
	second, back, ok := next(start, west)
	if !ok {
		return pts
	}

	cur := second
	limit := 4*w*h + 8
	for steps := 0; steps < limit; steps++ {
		if cur == start {
			following, _, _ := next(cur, back)
			if following == second {
				break
			}
		}
		add(cur)
		cur, back, _ = next(cur, back)
	}

	if len(pts) >= 3 {
		// close the polygon: drop a trailing point collinear with the start
		n := len(pts)
		a, b, p := pts[n-2], pts[n-1], pts[0]
		if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
			pts = pts[:n-1]
		}
	}
	return pts
}

// dirTo returns the neighbour index of (bx, by) relative to (x, y).
func dirTo(x, y, bx, by int) int {
	dx, dy := bx-x, by-y
	for i := 0; i < 8; i++ {
		if nbrDX[i] == dx && nbrDY[i] == dy {
			return i
		}
	}
	return 0
}
