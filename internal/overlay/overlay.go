package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/usgeom/internal/detection"
)

// Options control how results are drawn.
type Options struct {
	// Thickness is the stroke width in pixels.
	Thickness int

	// Color, when set, is used for every result instead of the palette.
	Color *color.NRGBA

	// Labels turns the per-result text labels on or off.
	Labels bool

	// GridSpacing draws a coordinate grid when at least MinGridSpacing.
	GridSpacing int
}

// Option mutates Options.
type Option func(*Options)

// WithThickness sets the stroke width. Values below 1 are treated as 1.
func WithThickness(px int) Option {
	return func(o *Options) { o.Thickness = max(px, 1) }
}

// WithColor draws every result in c.
func WithColor(c color.NRGBA) Option {
	return func(o *Options) { o.Color = &c }
}

// WithoutLabels suppresses the text labels.
func WithoutLabels() Option {
	return func(o *Options) { o.Labels = false }
}

func buildOptions(opts []Option) Options {
	o := Options{Thickness: 2, Labels: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) colors(n int) []color.NRGBA {
	if o.Color == nil {
		return Palette(n)
	}
	out := make([]color.NRGBA, n)
	for i := range out {
		out[i] = *o.Color
	}
	return out
}

// Lines draws every line of r onto a copy of src.
//
// Interface results are labeled "Interface" just above the line; other
// line results are labeled "L<n>: <angle>°" near their first endpoint.
func Lines(src image.Image, r *detection.LineResult, opts ...Option) *image.NRGBA {
	o := buildOptions(opts)
	out := imaging.Clone(src)
	drawGrid(out, o.GridSpacing, o.Labels)
	if r == nil || len(r.Lines) == 0 {
		return out
	}

	colors := o.colors(len(r.Lines))
	for i, l := range r.Lines {
		c := colors[i]
		x1, y1 := int(math.Round(l.X1)), int(math.Round(l.Y1))
		x2, y2 := int(math.Round(l.X2)), int(math.Round(l.Y2))
		drawSegment(out, x1, y1, x2, y2, o.Thickness, c)

		if !o.Labels {
			continue
		}
		if r.Method == detection.MethodInterfaces {
			lx, ly := clampLabel(out, x1+5, y1-labelFace.Height-2)
			drawLabel(out, lx, ly, "Interface", c)
			continue
		}
		lx, ly := clampLabel(out, x1+4, y1+4)
		drawLabel(out, lx, ly, fmt.Sprintf("L%d: %.1f°", i+1, l.Angle()), c)
	}
	return out
}

// Circles draws every circle of r onto a copy of src, with a dot at each
// center. Labels show the radius and, for blob results, the circularity.
func Circles(src image.Image, r *detection.CircleResult, opts ...Option) *image.NRGBA {
	o := buildOptions(opts)
	out := imaging.Clone(src)
	drawGrid(out, o.GridSpacing, o.Labels)
	if r == nil || len(r.Circles) == 0 {
		return out
	}

	colors := o.colors(len(r.Circles))
	for i, dc := range r.Circles {
		c := colors[i]
		drawRing(out, dc.X, dc.Y, dc.Radius, o.Thickness, c)
		cx, cy := int(math.Round(dc.X)), int(math.Round(dc.Y))
		dot(out, cx, cy, 1, c)

		if !o.Labels {
			continue
		}
		label := fmt.Sprintf("R:%d", int(math.Round(dc.Radius)))
		if dc.Shape != nil {
			label += fmt.Sprintf(" C:%.2f", dc.Shape.Circularity)
		}
		lx, ly := clampLabel(out, cx-int(dc.Radius), cy-int(dc.Radius)-labelFace.Height-2)
		drawLabel(out, lx, ly, label, c)
	}
	return out
}
