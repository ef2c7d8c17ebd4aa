package overlay

import (
	"image"
	"image/color"
	"strconv"
)

// MinGridSpacing is the smallest grid spacing drawn; smaller values
// disable the grid.
const MinGridSpacing = 10

// gridColor is translucent red so results stay readable on top of it.
var gridColor = color.NRGBA{R: 255, A: 110}

// WithGrid draws a coordinate grid every spacing pixels beneath the
// results.
func WithGrid(spacing int) Option {
	return func(o *Options) { o.GridSpacing = spacing }
}

// drawGrid draws vertical and horizontal lines every spacing pixels. With
// labels, x coordinates are written along the top edge and y coordinates
// along the left edge.
func drawGrid(img *image.NRGBA, spacing int, labels bool) {
	if spacing < MinGridSpacing {
		return
	}
	b := img.Rect

	for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			blend(img, x, y, gridColor)
		}
	}
	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		for x := b.Min.X; x < b.Max.X; x++ {
			blend(img, x, y, gridColor)
		}
	}

	if !labels {
		return
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for x := b.Min.X + spacing; x < b.Max.X; x += spacing {
		drawLabel(img, x+2, b.Min.Y+1, strconv.Itoa(x), white)
	}
	for y := b.Min.Y + spacing; y < b.Max.Y; y += spacing {
		drawLabel(img, b.Min.X+1, y+2, strconv.Itoa(y), white)
	}
}
