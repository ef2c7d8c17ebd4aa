package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func regionProperty() map[string]interface{} {
	coord := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional region of interest. Result coordinates are relative to its top-left corner.",
		"properties": map[string]interface{}{
			"x1": coord("Left edge X coordinate (0-based)"),
			"y1": coord("Top edge Y coordinate (0-based)"),
			"x2": coord("Right edge X coordinate (exclusive)"),
			"y2": coord("Bottom edge Y coordinate (exclusive)"),
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func boolProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": desc,
		"default":     false,
	}
}

func configProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"description": "Optional detector parameter overrides, using the same keys as the detection section " +
			"of usgeom.yaml (e.g. canny_lower, hough_threshold, circle_param2, blob.min_circularity, ransac.max_lines). " +
			"Out-of-range values are clamped.",
	}
}

func gridProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Draw a coordinate grid with this spacing on the overlay (minimum 10, 0 disables)",
		"default":     0,
	}
}

// detectionSchema builds the input schema shared by the detection tools.
func detectionSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path":         pathProperty(),
		"roi":          regionProperty(),
		"overlay":      boolProperty("Return a PNG (base64) with the results drawn on the frame"),
		"grid_spacing": gridProperty(),
		"config":       configProperty(),
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{"path"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	autoThresholds := boolProperty("Estimate Canny thresholds from the frame's gradient statistics instead of using the configured ones")

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_info",
			Description: "Load an ultrasound frame and return its dimensions, channel count, format and file size. The frame is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "detection_config",
			Description: "Return the detector parameters the server starts every call from, after clamping.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Line Detection
		{
			Name: "detect_lines",
			Description: "Detect straight line segments (needles, probe edges). " +
				"method 'hough' uses the probabilistic Hough transform; 'ransac' fits lines iteratively and reports inlier support and confidence. " +
				"Results include endpoints, angle in degrees and length in pixels.",
			InputSchema: detectionSchema(map[string]interface{}{
				"method": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"hough", "ransac"},
					"description": "Line detector",
					"default":     "hough",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Optional RANSAC seed for reproducible results",
				},
				"auto_thresholds": autoThresholds,
			}),
		},
		{
			Name: "detect_interfaces",
			Description: "Detect horizontal tissue interfaces as peaks of the per-row edge count. " +
				"Each interface is returned as a full-width horizontal line, top to bottom.",
			InputSchema: detectionSchema(map[string]interface{}{
				"min_peak_height_ratio": map[string]interface{}{
					"type":        "number",
					"description": "Minimum row edge count as a fraction of image width (clamped to 0.05-0.5). Default from config.",
				},
				"auto_thresholds": autoThresholds,
			}),
		},

		// Circle Detection
		{
			Name: "detect_circles",
			Description: "Detect circular structures (calibration spheres, vessels in cross-section). " +
				"method 'hough' uses the gradient Hough transform; 'blob' thresholds the frame and keeps round contours, reporting circularity; " +
				"'auto' tries Hough and falls back to blob.",
			InputSchema: detectionSchema(map[string]interface{}{
				"method": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"hough", "blob", "auto"},
					"description": "Circle detector",
					"default":     "auto",
				},
				"min_radius": map[string]interface{}{
					"type":        "integer",
					"description": "Minimum radius in pixels. Default from config.",
				},
				"max_radius": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum radius in pixels; 0 means up to the image size. Default from config.",
				},
			}),
		},

		// Pipeline Stages
		{
			Name:        "estimate_thresholds",
			Description: "Estimate Canny hysteresis thresholds from the gradient statistics of the preprocessed frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "edge_map",
			Description: "Run preprocessing and Canny edge detection. Returns the edge pixel count and density, and optionally the edge map as a PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  regionProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Lower hysteresis threshold. Default from config.",
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "Upper hysteresis threshold. Default from config.",
					},
					"auto_thresholds": autoThresholds,
					"include_image":   boolProperty("Include the edge map as a base64 PNG"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "preprocess",
			Description: "Return the frame after grayscale conversion, CLAHE contrast equalization and bilateral smoothing, as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"roi":  regionProperty(),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
