package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/budgetbubbles/pkg/observability"
	"github.com/matzehuels/budgetbubbles/pkg/server"
)

// serveCommand runs the HTTP backend.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		datasetDir string
		baseURL    string
		noMetrics  bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend",
		Long: `Run the HTTP backend.

Serves datasets from <dataset-dir>/<id>.json, stores saved states in the
configured store and renders visualizations on request:

  GET  /visualization/{id}[?s=state-id]
  POST /save_visualization/{id}
  GET  /visualization/{id}/states
  GET  /render/{id}.{svg|dot|png|json}
  GET  /healthz
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if addr == "" {
				addr = cfg.Addr
			}
			if datasetDir == "" {
				datasetDir = cfg.DatasetDir
			}
			return c.runServe(cmd.Context(), serveParams{
				addr:       addr,
				datasetDir: datasetDir,
				baseURL:    baseURL,
				metrics:    cfg.Metrics && !noMetrics,
				noCache:    noCache,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&datasetDir, "datasets", "", "dataset directory (default from config)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public URL prefix of share links")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

type serveParams struct {
	addr       string
	datasetDir string
	baseURL    string
	metrics    bool
	noCache    bool
}

func (c *CLI) runServe(ctx context.Context, p serveParams) error {
	runner, err := c.newRunner(ctx, p.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var metricsHandler http.Handler
	if p.metrics {
		m := observability.NewMetrics()
		observability.SetPipelineHooks(m)
		observability.SetCacheHooks(m)
		observability.SetServerHooks(m)
		defer observability.Reset()
		metricsHandler = m.Handler()
	}

	defaults := newLayoutFlags().apply(c.Config)
	srv, err := server.New(server.Options{
		Runner:      runner,
		Store:       st,
		Datasets:    server.NewDirDatasets(p.datasetDir),
		Logger:      c.Logger,
		Defaults:    defaults,
		BaseURL:     p.baseURL,
		Metrics:     metricsHandler,
		CORSOrigins: c.Config.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}

	printInfo("Serving %s on %s", StyleValue.Render(p.datasetDir), StyleLink.Render("http://"+p.addr))
	return srv.ListenAndServe(ctx, p.addr)
}
