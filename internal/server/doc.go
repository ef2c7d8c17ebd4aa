// Package server implements the MCP (Model Context Protocol) server for
// ultrasound geometry detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the line, interface
// and circle detectors through the MCP protocol, so that MCP clients can
// locate needles, tissue interfaces and spherical targets in ultrasound frames.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame information:
//   - image_info: Load a frame and get metadata
//   - detection_config: The server's detector parameters
//
// Detection:
//   - detect_lines: Probabilistic Hough or RANSAC line segments
//   - detect_interfaces: Horizontal interfaces from row edge projections
//   - detect_circles: Hough circles, contour blobs, or Hough with blob fallback
//
// Diagnostics:
//   - estimate_thresholds: Automatic Canny thresholds
//   - edge_map: Canny edge statistics and optional edge image
//   - preprocess: The CLAHE and bilateral filtered frame
//
// Every tool that reads a frame accepts an optional "roi" rectangle. The
// detection tools also accept "overlay" (a base64 PNG of the result drawn on
// the frame) and "config", a partial detection config merged over the
// server's own.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded frames. Frames are cached
// by path and reused across tool calls for the lifetime of the process.
//
// # Metrics
//
// Tool calls are counted and timed with Prometheus collectors registered on
// the default registry. ServeMetrics exposes them over HTTP.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithDetectionConfig(cfg.Detection))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
