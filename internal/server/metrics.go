package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/usgeom/internal/analysis"
)

var (
	toolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "usgeom_tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)

	toolCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usgeom_tool_call_duration_seconds",
			Help:    "MCP tool call duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"tool"},
	)

	detectionsFound = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "usgeom_detections_found",
			Help:    "Number of lines or circles returned per detection call",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
		[]string{"method"}, // hough_lines, ransac_lines, interfaces, hough_circles, blob_circles
	)
)

// observeToolCall records the outcome of one tool call.
func observeToolCall(tool string, result interface{}, err error, elapsed time.Duration) {
	status := "ok"
	switch {
	case errors.Is(err, errUnknownTool):
		tool, status = "unknown", "error"
	case err != nil:
		status = "error"
	}
	toolCallsTotal.WithLabelValues(tool, status).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())

	switch r := result.(type) {
	case *analysis.LinesReport:
		detectionsFound.WithLabelValues(string(r.Method)).Observe(float64(r.Count))
	case *analysis.CirclesReport:
		detectionsFound.WithLabelValues(string(r.Method)).Observe(float64(r.Count))
	}
}

// ServeMetrics exposes the Prometheus registry on addr at /metrics until ctx
// is cancelled.
func ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Metrics endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		return nil
	}
}
