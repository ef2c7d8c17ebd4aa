package overlay

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// blend paints c over the pixel at (x, y) honoring c's alpha. Points
// outside the image are ignored.
func blend(img *image.NRGBA, x, y int, c color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return
	}
	if c.A == 255 {
		img.SetNRGBA(x, y, c)
		return
	}
	dst := img.NRGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a) + 127) / 255)
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: 255,
	})
}

// dot fills a square of side 2*r+1 centered on (x, y).
func dot(img *image.NRGBA, x, y, r int, c color.NRGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			blend(img, x+dx, y+dy, c)
		}
	}
}

// drawSegment draws a line with Bresenham's algorithm, thickened by
// stamping a dot at every step.
func drawSegment(img *image.NRGBA, x0, y0, x1, y1, thickness int, c color.NRGBA) {
	r := max(thickness, 1) / 2
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		dot(img, x0, y0, r, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// drawRing draws a circle outline by sampling its circumference densely
// enough that consecutive samples are at most half a pixel apart.
func drawRing(img *image.NRGBA, cx, cy, radius float64, thickness int, c color.NRGBA) {
	r := max(thickness, 1) / 2
	steps := max(int(math.Ceil(4*math.Pi*radius)), 8)
	last := image.Point{X: math.MinInt, Y: math.MinInt}
	for i := 0; i < steps; i++ {
		theta := 2 * math.Pi * float64(i) / float64(steps)
		p := image.Point{
			X: int(math.Round(cx + radius*math.Cos(theta))),
			Y: int(math.Round(cy + radius*math.Sin(theta))),
		}
		if p == last {
			continue
		}
		dot(img, p.X, p.Y, r, c)
		last = p
	}
}

// labelFace is the bitmap font used for all labels.
var labelFace = basicfont.Face7x13

// drawLabel writes text with its top-left corner at (x, y) on a
// translucent background box.
func drawLabel(img *image.NRGBA, x, y int, text string, fg color.NRGBA) {
	face := labelFace
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}

	width := d.MeasureString(text).Ceil()
	box := image.Rect(x-1, y-1, x+width+1, y+face.Height+1).Intersect(img.Rect)
	bg := color.NRGBA{A: 180}
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			blend(img, px, py, bg)
		}
	}

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}

// clampLabel keeps a label anchor inside the image.
func clampLabel(img *image.NRGBA, x, y int) (int, int) {
	b := img.Rect
	x = min(max(x, b.Min.X), b.Max.X-1)
	y = min(max(y, b.Min.Y), b.Max.Y-1)
	return x, y
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
