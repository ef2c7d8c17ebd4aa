package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ironsheep/usgeom/internal/analysis"
	"github.com/ironsheep/usgeom/internal/detection"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_info", "detect_lines").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// errUnknownTool is returned by executeTool for names it does not serve.
var errUnknownTool = errors.New("unknown tool")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	observeToolCall(params.Name, result, err, time.Since(start))

	if err != nil {
		slog.Warn("Tool execution failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges per-call overrides into the server's detection config
//  3. Runs the analysis (which loads the frame through the shared cache)
//  4. Returns the report or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_info":
		return s.handleImageInfo(args)
	case "detection_config":
		return s.detection.Normalize(), nil
	case "detect_lines":
		return s.handleDetectLines(args)
	case "detect_interfaces":
		return s.handleDetectInterfaces(args)
	case "detect_circles":
		return s.handleDetectCircles(args)
	case "estimate_thresholds":
		return s.handleEstimateThresholds(args)
	case "edge_map":
		return s.handleEdgeMap(args)
	case "preprocess":
		return s.handlePreprocess(args)
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownTool, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument handling ===

// frameArgs are accepted by every tool that reads a frame.
type frameArgs struct {
	Path string           `json:"path"`
	ROI  *analysis.Region `json:"roi"`
}

// detectArgs extend frameArgs for the detection tools.
type detectArgs struct {
	frameArgs
	Overlay        bool            `json:"overlay"`
	AutoThresholds bool            `json:"auto_thresholds"`
	GridSpacing    int             `json:"grid_spacing"`
	Config         json.RawMessage `json:"config"`
}

func (a frameArgs) validate() error {
	if a.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// options builds analysis options from the arguments and server settings.
func (s *Server) options(a frameArgs) analysis.Options {
	return analysis.Options{
		ROI:          a.ROI,
		MaxDim:       s.maxImageDim,
		OverlayColor: s.overlayColor,
	}
}

// detectionConfig returns the server config with the per-call overrides in
// raw merged on top. Fields absent from raw keep their server values.
func (s *Server) detectionConfig(raw json.RawMessage) (detection.Config, error) {
	cfg := s.detection
	if len(raw) == 0 || string(raw) == "null" {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return detection.Config{}, fmt.Errorf("invalid config override: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return detection.Config{}, err
	}
	return cfg, nil
}

func (s *Server) prepareDetect(a detectArgs) (detection.Config, analysis.Options, error) {
	if err := a.validate(); err != nil {
		return detection.Config{}, analysis.Options{}, err
	}
	cfg, err := s.detectionConfig(a.Config)
	if err != nil {
		return detection.Config{}, analysis.Options{}, err
	}
	opts := s.options(a.frameArgs)
	opts.Overlay = a.Overlay
	opts.AutoThresholds = a.AutoThresholds
	opts.GridSpacing = a.GridSpacing
	return cfg, opts, nil
}

// encodable is implemented by every report that can carry an overlay.
type encodable interface {
	EncodeOverlay() error
}

func withOverlay(report encodable, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	if err := report.EncodeOverlay(); err != nil {
		return nil, err
	}
	return report, nil
}

// === Handlers ===

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.analyzer.Info(a.Path)
}

type detectLinesArgs struct {
	detectArgs
	Method string  `json:"method"`
	Seed   *uint64 `json:"seed"`
}

func (s *Server) handleDetectLines(args json.RawMessage) (interface{}, error) {
	var a detectLinesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	method, err := analysis.ParseLineMethod(a.Method)
	if err != nil {
		return nil, err
	}
	cfg, opts, err := s.prepareDetect(a.detectArgs)
	if err != nil {
		return nil, err
	}
	opts.Seed = a.Seed
	return withOverlay(s.analyzer.Lines(a.Path, method, cfg, opts))
}

type detectInterfacesArgs struct {
	detectArgs
	MinPeakHeightRatio *float64 `json:"min_peak_height_ratio"`
}

func (s *Server) handleDetectInterfaces(args json.RawMessage) (interface{}, error) {
	var a detectInterfacesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg, opts, err := s.prepareDetect(a.detectArgs)
	if err != nil {
		return nil, err
	}
	if a.MinPeakHeightRatio != nil {
		cfg = cfg.WithMinPeakHeightRatio(*a.MinPeakHeightRatio)
	}
	return withOverlay(s.analyzer.Interfaces(a.Path, cfg, opts))
}

type detectCirclesArgs struct {
	detectArgs
	Method    string `json:"method"`
	MinRadius *int   `json:"min_radius"`
	MaxRadius *int   `json:"max_radius"`
}

func (s *Server) handleDetectCircles(args json.RawMessage) (interface{}, error) {
	var a detectCirclesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	method, err := analysis.ParseCircleMethod(a.Method)
	if err != nil {
		return nil, err
	}
	cfg, opts, err := s.prepareDetect(a.detectArgs)
	if err != nil {
		return nil, err
	}
	if a.MinRadius != nil {
		cfg.MinRadius = *a.MinRadius
	}
	if a.MaxRadius != nil {
		cfg.MaxRadius = *a.MaxRadius
	}
	return withOverlay(s.analyzer.Circles(a.Path, method, cfg, opts))
}

func (s *Server) handleEstimateThresholds(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return s.analyzer.EstimateThresholds(a.Path, s.options(a))
}

type edgeMapArgs struct {
	frameArgs
	ThresholdLow   *float64 `json:"threshold_low"`
	ThresholdHigh  *float64 `json:"threshold_high"`
	AutoThresholds bool     `json:"auto_thresholds"`
	IncludeImage   bool     `json:"include_image"`
}

func (s *Server) handleEdgeMap(args json.RawMessage) (interface{}, error) {
	var a edgeMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	cfg := s.detection
	lower, upper := cfg.CannyLower, cfg.CannyUpper
	if a.ThresholdLow != nil {
		lower = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		upper = *a.ThresholdHigh
	}
	cfg = cfg.WithCannyThresholds(lower, upper)

	opts := s.options(a.frameArgs)
	opts.AutoThresholds = a.AutoThresholds
	report, err := s.analyzer.Edges(a.Path, cfg.CannyLower, cfg.CannyUpper, opts)
	if err != nil {
		return nil, err
	}
	if a.IncludeImage {
		if err := report.EncodeOverlay(); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (s *Server) handlePreprocess(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return withOverlay(s.analyzer.Preprocess(a.Path, s.options(a)))
}
