package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/internal/server"
	"github.com/matzehuels/wardley/pkg/observability"
	"github.com/matzehuels/wardley/pkg/position"
)

// shutdownTimeout bounds the graceful shutdown of `wardley serve`.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compile, layout and overlay API over HTTP",
		Long: `Serve the compile, layout and overlay API over HTTP.

  POST /v1/compile       {"text"}                      -> map model
  POST /v1/layout        {"text", "meta", "width", ...} -> layout
  POST /v1/meta/move     {"meta", "id", "x", "y"}       -> {"meta"}
  POST /v1/meta/resolve  {"meta", "id", "default"}      -> {"x", "y"}
  POST /v1/meta/prune    {"text", "meta"}              -> {"meta", "removed"}
  GET  /healthz
  GET  /metrics

Errors in the submitted texts answer 422 with {"code", "message", "line"}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, noMetrics bool) error {
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := server.Options{
		Addr:   addr,
		Canvas: position.Canvas{Width: c.Config.Canvas.Width, Height: c.Config.Canvas.Height},
	}
	if !noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		opts.Gatherer = reg
	}

	srv := server.New(runner, c.Logger, opts)
	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	printSuccess("Serving on %s", StyleHighlight.Render(srv.Addr()))
	printDetail("Cache: %s", c.cacheLocation())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	}
}
