package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/usgeom/internal/server"
)

func (a *app) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Serve the detectors as MCP tools over JSON-RPC 2.0 on stdin and stdout.
Logs go to stderr. With --metrics-addr, Prometheus metrics are exposed over
HTTP at /metrics.

Examples:
  usgeom serve
  usgeom serve --metrics-addr 127.0.0.1:9090 --max-image-dim 1024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(
				server.WithAnalyzer(a.analyzer),
				server.WithDetectionConfig(a.cfg.Detection),
				server.WithMaxImageDim(a.cfg.Server.MaxImageDim),
				server.WithOverlayColor(a.cfg.Output.OverlayColor),
				server.WithVersion(a.build.Version),
			)

			if addr := a.cfg.Server.MetricsAddr; addr != "" {
				go func() {
					if err := server.ServeMetrics(ctx, addr); err != nil {
						slog.Error("Metrics endpoint failed", "error", err)
					}
				}()
			}

			slog.Info("MCP server starting", "version", a.build.Version)
			return serve(ctx, srv, cmd)
		},
	}

	cmd.Flags().String("metrics-addr", "", "listen address for Prometheus metrics (empty disables)")
	cmd.Flags().Int("max-image-dim", 0, "downsize frames whose larger side exceeds this many pixels (0 disables)")
	cmd.Flags().String("overlay-color", "", "draw every overlay result in this hex color")
	return cmd
}

// serve runs srv until its input ends or ctx is cancelled. A blocked read
// on stdin does not delay shutdown.
func serve(ctx context.Context, srv *server.Server, cmd *cobra.Command) error {
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout()) }()

	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-ctx.Done():
		slog.Info("MCP server stopping")
		return nil
	}
}
