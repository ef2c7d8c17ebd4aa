package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/usgeom/internal/analysis"
	"github.com/ironsheep/usgeom/internal/config"
	"github.com/ironsheep/usgeom/internal/detection"
)

func sampleLines() *analysis.LinesReport {
	return &analysis.LinesReport{
		LineResult: &detection.LineResult{
			Method: detection.MethodRansacLines,
			Lines: []detection.DetectedLine{{
				Line:    detection.Line{X1: 0, Y1: 10, X2: 100, Y2: 10},
				Support: &detection.LineSupport{Inliers: 90, Confidence: 45},
			}},
			Count: 1,
		},
		Frame:      analysis.Frame{Width: 100, Height: 50, OffsetX: 5, OffsetY: 6, Scale: 1},
		Thresholds: analysis.Thresholds{Lower: 30, Upper: 90},
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputFormatJSON, sampleLines()))
	out := buf.String()
	assert.Contains(t, out, `"method": "ransac_lines"`)
	assert.Contains(t, out, `"inliers": 90`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputFormatYAML, sampleLines()))
	out := buf.String()

	assert.Contains(t, out, "method: ransac_lines\n")
	assert.Contains(t, out, "angle_degrees: 0\n")
	assert.Contains(t, out, "  offset_x: 5\n")
	assert.NotContains(t, out, `"`)
	assert.NotContains(t, out, "{")
}

func TestRender_YAMLQuotesAmbiguousStrings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputFormatYAML, map[string]string{"version": "1.0", "flag": "true"}))
	out := buf.String()
	assert.Contains(t, out, `version: "1.0"`)
	assert.Contains(t, out, `flag: "true"`)
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputFormatText, sampleLines()))
	out := buf.String()

	assert.Contains(t, out, "frame: 100x50 at (5, 6)\n")
	assert.Contains(t, out, "ransac_lines: 1 line(s)\n")
	assert.Contains(t, out, "L1 (0.0, 10.0) -> (100.0, 10.0)")
	assert.Contains(t, out, "horizontal")
	assert.Contains(t, out, "inliers 90  confidence 45.0%")
	assert.Contains(t, out, "longest: (0.0, 10.0) -> (100.0, 10.0)  length 100.0\n")

	buf.Reset()
	circles := &analysis.CirclesReport{
		CircleResult: &detection.CircleResult{
			Method: detection.MethodBlobCircles,
			Circles: []detection.DetectedCircle{
				{
					Circle: detection.Circle{X: 50, Y: 40, Radius: 12},
					Shape:  &detection.ShapeQuality{Circularity: 0.91},
				},
				{Circle: detection.Circle{X: 20, Y: 20, Radius: 30}},
			},
			Count: 2,
		},
		Frame: analysis.Frame{Width: 100, Height: 80, Scale: 0.5},
	}
	require.NoError(t, render(&buf, outputFormatText, circles))
	out = buf.String()
	assert.Contains(t, out, "frame: 100x80 scale 0.500\n")
	assert.Contains(t, out, "blob_circles: 2 circle(s), largest first\n")
	assert.Contains(t, out, "C1 center (20.0, 20.0)  radius 30.0\n")
	assert.Contains(t, out, "C2 center (50.0, 40.0)  radius 12.0  circularity 0.91")

	// Sorting for display leaves the report order alone.
	assert.Equal(t, 12.0, circles.Circles[0].Radius)

	buf.Reset()
	empty := &analysis.LinesReport{
		LineResult: &detection.LineResult{Method: detection.MethodHoughLines, Lines: []detection.DetectedLine{}},
		Frame:      analysis.Frame{Width: 10, Height: 10, Scale: 1},
	}
	require.NoError(t, render(&buf, outputFormatText, empty))
	assert.NotContains(t, buf.String(), "longest")
}

func TestRender_TextFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputFormatText, map[string]int{"a": 1}))
	assert.Equal(t, "a: 1\n", buf.String())
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.Config
		wantDebug bool
		wantWarn  bool
		wantJSON  bool
	}{
		{"info text", config.Config{LogLevel: "info", LogFormat: "text"}, false, true, false},
		{"verbose", config.Config{LogLevel: "error", Verbose: true}, true, true, false},
		{"error only", config.Config{LogLevel: "error"}, false, false, false},
		{"json", config.Config{LogLevel: "debug", LogFormat: "json"}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&tt.cfg, &buf)
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tt.wantWarn, logger.Enabled(context.Background(), slog.LevelWarn))

			logger.Error("boom")
			if tt.wantJSON {
				assert.True(t, strings.HasPrefix(buf.String(), "{"))
			} else {
				assert.Contains(t, buf.String(), "msg=boom")
			}
		})
	}
}
