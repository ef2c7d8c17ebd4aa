package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/usgeom/internal/detection"
)

// createTestImageFile writes a gray PNG built by draw and returns its path.
func createTestImageFile(t *testing.T, width, height int, draw func(img *image.Gray)) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	if draw != nil {
		draw(img)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// barFrame has a bright horizontal band on rows 100-119.
func barFrame(t *testing.T) string {
	return createTestImageFile(t, 200, 200, func(img *image.Gray) {
		for y := 100; y < 120; y++ {
			for x := 0; x < 200; x++ {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	})
}

// diskFrame has a bright disk of radius 30 at the center.
func diskFrame(t *testing.T) string {
	return createTestImageFile(t, 200, 200, func(img *image.Gray) {
		for y := 0; y < 200; y++ {
			for x := 0; x < 200; x++ {
				if (x-100)*(x-100)+(y-100)*(y-100) <= 30*30 {
					img.SetGray(x, y, color.Gray{Y: 255})
				}
			}
		}
	})
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// toolResult decodes the JSON text content of a successful tool response.
func toolResult(t *testing.T, resp *MCPResponse) map[string]interface{} {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &decoded); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	return decoded
}

func TestHandleToolsCall_ImageInfo(t *testing.T) {
	s := New()
	got := toolResult(t, callTool(t, s, "image_info", map[string]interface{}{
		"path": createTestImageFile(t, 120, 80, nil),
	}))

	if got["width"] != float64(120) || got["height"] != float64(80) {
		t.Errorf("dimensions: got %vx%v, want 120x80", got["width"], got["height"])
	}
	if got["channels"] != float64(1) {
		t.Errorf("channels: got %v, want 1", got["channels"])
	}
	if got["format"] != "png" {
		t.Errorf("format: got %v, want png", got["format"])
	}
}

func TestHandleToolsCall_DetectionConfig(t *testing.T) {
	cfg := detection.DefaultConfig()
	cfg.CannyUpper = 500
	s := New(WithDetectionConfig(cfg))

	got := toolResult(t, callTool(t, s, "detection_config", nil))
	if got["canny_upper"] != float64(200) {
		t.Errorf("canny_upper should be clamped to 200, got %v", got["canny_upper"])
	}
	if got["canny_lower"] != float64(30) {
		t.Errorf("canny_lower: got %v, want 30", got["canny_lower"])
	}
	if _, ok := got["ransac"].(map[string]interface{}); !ok {
		t.Error("ransac section missing")
	}
}

func TestHandleToolsCall_DetectLines(t *testing.T) {
	s := New()
	path := barFrame(t)

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantMethod string
	}{
		{"default hough", map[string]interface{}{"path": path}, "hough_lines"},
		{"ransac seeded", map[string]interface{}{"path": path, "method": "ransac", "seed": 7}, "ransac_lines"},
		{"auto thresholds", map[string]interface{}{"path": path, "auto_thresholds": true}, "hough_lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toolResult(t, callTool(t, s, "detect_lines", tt.args))

			if got["method"] != tt.wantMethod {
				t.Errorf("method: got %v, want %s", got["method"], tt.wantMethod)
			}
			if count, _ := got["count"].(float64); count < 1 {
				t.Errorf("count: got %v, want >= 1", got["count"])
			}
			if _, ok := got["overlay"]; ok {
				t.Error("overlay should be omitted unless requested")
			}
			if _, ok := got["frame"]; !ok {
				t.Error("frame missing")
			}
		})
	}
}

func TestHandleToolsCall_DetectLinesOverlay(t *testing.T) {
	s := New(WithOverlayColor("#00ff00"))
	got := toolResult(t, callTool(t, s, "detect_lines", map[string]interface{}{
		"path":         barFrame(t),
		"overlay":      true,
		"grid_spacing": 50,
	}))

	ov, ok := got["overlay"].(map[string]interface{})
	if !ok {
		t.Fatal("overlay missing")
	}
	if ov["mime_type"] != "image/png" {
		t.Errorf("mime_type: got %v", ov["mime_type"])
	}
	if s, _ := ov["image_base64"].(string); s == "" {
		t.Error("image_base64 is empty")
	}
}

func TestHandleToolsCall_DetectLinesROI(t *testing.T) {
	s := New()
	got := toolResult(t, callTool(t, s, "detect_lines", map[string]interface{}{
		"path": barFrame(t),
		"roi":  map[string]interface{}{"x1": 50, "y1": 80, "x2": 150, "y2": 140},
	}))

	frame := got["frame"].(map[string]interface{})
	if frame["width"] != float64(100) || frame["height"] != float64(60) {
		t.Errorf("frame: got %v", frame)
	}
	if frame["offset_x"] != float64(50) || frame["offset_y"] != float64(80) {
		t.Errorf("offset: got %v", frame)
	}
}

func TestHandleToolsCall_ConfigOverride(t *testing.T) {
	s := New()
	got := toolResult(t, callTool(t, s, "detect_lines", map[string]interface{}{
		"path":   barFrame(t),
		"method": "ransac",
		"seed":   1,
		"config": map[string]interface{}{"ransac": map[string]interface{}{"max_lines": 1}},
	}))

	if got["count"] != float64(1) {
		t.Errorf("max_lines override: got count %v, want 1", got["count"])
	}
}

func TestServer_DetectionConfigMerge(t *testing.T) {
	base := detection.DefaultConfig()
	base.HoughThreshold = 77
	s := New(WithDetectionConfig(base))

	cfg, err := s.detectionConfig(json.RawMessage(`{"canny_upper":120,"blob":{"min_area":50}}`))
	if err != nil {
		t.Fatalf("detectionConfig: %v", err)
	}
	if cfg.CannyUpper != 120 || cfg.Blob.MinArea != 50 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.HoughThreshold != 77 || cfg.Blob.MaxArea != base.Blob.MaxArea {
		t.Errorf("absent fields should keep server values: %+v", cfg)
	}
	if s.detection.CannyUpper != base.CannyUpper {
		t.Error("server config was modified")
	}

	for _, raw := range []string{``, `null`} {
		cfg, err := s.detectionConfig(json.RawMessage(raw))
		if err != nil || cfg != base {
			t.Errorf("%q: got %+v, %v", raw, cfg, err)
		}
	}

	if _, err := s.detectionConfig(json.RawMessage(`{"canny_lower":"high"}`)); err == nil {
		t.Error("expected error for mistyped override")
	}
}

func TestHandleToolsCall_DetectInterfaces(t *testing.T) {
	s := New()
	path := createTestImageFile(t, 200, 300, func(img *image.Gray) {
		for y := 0; y < 300; y++ {
			v := uint8(0)
			switch {
			case y >= 200:
				v = 60
			case y >= 100:
				v = 200
			}
			for x := 0; x < 200; x++ {
				img.SetGray(x, y, color.Gray{Y: v})
			}
		}
	})

	got := toolResult(t, callTool(t, s, "detect_interfaces", map[string]interface{}{
		"path":                  path,
		"min_peak_height_ratio": 0.15,
	}))

	if got["method"] != "interfaces" {
		t.Errorf("method: got %v", got["method"])
	}
	if got["count"] != float64(2) {
		t.Fatalf("count: got %v, want 2", got["count"])
	}
	lines := got["lines"].([]interface{})
	first := lines[0].(map[string]interface{})["line"].(map[string]interface{})
	if y := first["y1"].(float64); y < 98 || y > 102 {
		t.Errorf("first interface y: got %v, want ~100", y)
	}
}

func TestHandleToolsCall_DetectCircles(t *testing.T) {
	s := New()
	path := diskFrame(t)

	tests := []struct {
		method     string
		wantMethod string
	}{
		{"", "hough_circles"},
		{"hough", "hough_circles"},
		{"blob", "blob_circles"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMethod+"/"+tt.method, func(t *testing.T) {
			got := toolResult(t, callTool(t, s, "detect_circles", map[string]interface{}{
				"path":   path,
				"method": tt.method,
			}))
			if got["method"] != tt.wantMethod {
				t.Errorf("method: got %v, want %s", got["method"], tt.wantMethod)
			}
			circles := got["circles"].([]interface{})
			if len(circles) < 1 {
				t.Fatal("expected at least one circle")
			}
			c := circles[0].(map[string]interface{})["circle"].(map[string]interface{})
			if r := c["radius"].(float64); r < 27 || r > 33 {
				t.Errorf("radius: got %v, want ~30", r)
			}
		})
	}
}

func TestHandleToolsCall_DetectCirclesRadiusFallback(t *testing.T) {
	s := New()
	got := toolResult(t, callTool(t, s, "detect_circles", map[string]interface{}{
		"path":       diskFrame(t),
		"min_radius": 100,
		"max_radius": 120,
	}))

	if got["method"] != "blob_circles" {
		t.Errorf("auto should fall back to blob when Hough finds nothing, got %v", got["method"])
	}
}

func TestHandleToolsCall_EstimateThresholds(t *testing.T) {
	s := New()
	got := toolResult(t, callTool(t, s, "estimate_thresholds", map[string]interface{}{
		"path": barFrame(t),
	}))

	lower, _ := got["lower"].(float64)
	upper, _ := got["upper"].(float64)
	if lower < 10 || upper > 200 || upper <= lower {
		t.Errorf("thresholds out of range: %v, %v", lower, upper)
	}
}

func TestHandleToolsCall_EdgeMap(t *testing.T) {
	s := New()
	path := barFrame(t)

	got := toolResult(t, callTool(t, s, "edge_map", map[string]interface{}{
		"path":           path,
		"threshold_low":  30,
		"threshold_high": 90,
	}))
	if px, _ := got["edge_pixels"].(float64); px < 300 {
		t.Errorf("edge_pixels: got %v, want > 300", got["edge_pixels"])
	}
	if _, ok := got["overlay"]; ok {
		t.Error("edge image should be omitted unless include_image is set")
	}
	th := got["thresholds"].(map[string]interface{})
	if th["lower"] != float64(30) || th["upper"] != float64(90) {
		t.Errorf("thresholds: got %v", th)
	}

	got = toolResult(t, callTool(t, s, "edge_map", map[string]interface{}{
		"path":           path,
		"threshold_low":  150,
		"threshold_high": 40,
		"include_image":  true,
	}))
	th = got["thresholds"].(map[string]interface{})
	if th["lower"] != float64(40) || th["upper"] != float64(150) {
		t.Errorf("reversed thresholds should be swapped, got %v", th)
	}
	if _, ok := got["overlay"]; !ok {
		t.Error("edge image missing")
	}
}

func TestHandleToolsCall_Preprocess(t *testing.T) {
	s := New()
	got := toolResult(t, callTool(t, s, "preprocess", map[string]interface{}{
		"path": diskFrame(t),
	}))

	ov, ok := got["overlay"].(map[string]interface{})
	if !ok {
		t.Fatal("preprocessed image missing")
	}
	if ov["width"] != float64(200) {
		t.Errorf("width: got %v", ov["width"])
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := New()
	path := barFrame(t)

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"missing path", "detect_lines", map[string]interface{}{}},
		{"missing info path", "image_info", map[string]interface{}{}},
		{"nonexistent file", "image_info", map[string]interface{}{"path": "/nonexistent/frame.png"}},
		{"bad line method", "detect_lines", map[string]interface{}{"path": path, "method": "lsd"}},
		{"bad circle method", "detect_circles", map[string]interface{}{"path": path, "method": "ellipse"}},
		{"roi outside frame", "estimate_thresholds", map[string]interface{}{
			"path": path,
			"roi":  map[string]interface{}{"x1": 300, "y1": 300, "x2": 400, "y2": 400},
		}},
		{"mistyped override", "detect_circles", map[string]interface{}{"path": path, "config": map[string]interface{}{"min_radius": "big"}}},
		{"unknown tool", "image_ocr_full", map[string]interface{}{"path": path}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})

	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("got %+v, want -32602", resp.Error)
	}
}

func TestMustMarshalJSON(t *testing.T) {
	got := mustMarshalJSON(map[string]int{"a": 1})
	if got != "{\n  \"a\": 1\n}" {
		t.Errorf("got %q", got)
	}
	if got := mustMarshalJSON(func() {}); got != "" {
		t.Errorf("unmarshalable value: got %q, want empty", got)
	}
}
