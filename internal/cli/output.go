package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/usgeom/internal/analysis"
	"github.com/ironsheep/usgeom/internal/detection"
	"github.com/ironsheep/usgeom/internal/raster"
)

const (
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
	outputFormatText = "text"
)

// render writes v to w in the configured format.
func render(w io.Writer, format string, v any) error {
	switch format {
	case outputFormatYAML:
		return renderYAML(w, v)
	case outputFormatText:
		return renderText(w, v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// renderYAML goes through JSON so reports keep their JSON field names and
// custom marshalers.
func renderYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}

// blockStyle drops the flow and quoting styles the JSON source implies.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func renderText(w io.Writer, v any) error {
	var b strings.Builder
	switch r := v.(type) {
	case *analysis.LinesReport:
		writeFrame(&b, r.Frame)
		fmt.Fprintf(&b, "thresholds: %.1f / %.1f\n", r.Thresholds.Lower, r.Thresholds.Upper)
		fmt.Fprintf(&b, "%s: %d line(s)\n", r.Method, r.Count)
		for i, l := range r.Lines {
			fmt.Fprintf(&b, "  L%d (%.1f, %.1f) -> (%.1f, %.1f)  angle %.1f°  length %.1f  %s",
				i+1, l.X1, l.Y1, l.X2, l.Y2, l.Angle(), l.Length(), detection.ClassifyLine(l.Line))
			if l.Support != nil {
				fmt.Fprintf(&b, "  inliers %d  confidence %.1f%%", l.Support.Inliers, l.Support.Confidence)
			}
			b.WriteByte('\n')
		}
		if l, ok := r.Longest(); ok {
			fmt.Fprintf(&b, "longest: (%.1f, %.1f) -> (%.1f, %.1f)  length %.1f\n",
				l.X1, l.Y1, l.X2, l.Y2, l.Length())
		}
	case *analysis.CirclesReport:
		writeFrame(&b, r.Frame)
		fmt.Fprintf(&b, "%s: %d circle(s), largest first\n", r.Method, r.Count)
		for i, c := range r.SortedByRadius() {
			fmt.Fprintf(&b, "  C%d center (%.1f, %.1f)  radius %.1f", i+1, c.X, c.Y, c.Radius)
			if c.Shape != nil {
				fmt.Fprintf(&b, "  circularity %.2f", c.Shape.Circularity)
			}
			b.WriteByte('\n')
		}
	case *analysis.ThresholdReport:
		writeFrame(&b, r.Frame)
		fmt.Fprintf(&b, "thresholds: %.1f / %.1f\n", r.Lower, r.Upper)
	case *analysis.EdgeReport:
		writeFrame(&b, r.Frame)
		fmt.Fprintf(&b, "thresholds: %.1f / %.1f\n", r.Thresholds.Lower, r.Thresholds.Upper)
		fmt.Fprintf(&b, "edge pixels: %d (%.2f%%)\n", r.EdgePixels, r.EdgeDensity*100)
	case *analysis.PreprocessReport:
		writeFrame(&b, r.Frame)
	case *raster.ImageInfo:
		fmt.Fprintf(&b, "%dx%d %s, %d channel(s), %d bytes\n", r.Width, r.Height, r.Format, r.Channels, r.FileSizeBytes)
	default:
		return renderYAML(w, v)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFrame(b *strings.Builder, f analysis.Frame) {
	fmt.Fprintf(b, "frame: %dx%d", f.Width, f.Height)
	if f.OffsetX != 0 || f.OffsetY != 0 {
		fmt.Fprintf(b, " at (%d, %d)", f.OffsetX, f.OffsetY)
	}
	if f.Scale != 1 {
		fmt.Fprintf(b, " scale %.3f", f.Scale)
	}
	b.WriteByte('\n')
}
