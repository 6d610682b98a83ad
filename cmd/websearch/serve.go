package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search UI and JSON API over HTTP",
		Long: `Serve loads the index and PageRank into memory and serves:

  GET /            HTML search form and results
  GET /api/search  the same results as JSON
  GET /healthz     readiness check

Query parameters: q, w1, w2, normalize (0/1) and k.

Examples:
  websearch serve
  websearch serve --addr :8080 --rps 5 --burst 10`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addSearchFlags(cmd)
	cmd.Flags().String("addr", "", "Listen address (default: 127.0.0.1:8080)")
	cmd.Flags().Float64("rps", 0, "Requests per second across all clients, 0 disables limiting (default: 20)")
	cmd.Flags().Int("burst", 0, "Rate limiter burst (default: 40)")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	for _, err := range []error{
		override(cmd, "addr", &cfg.Serve.Address, f.GetString),
		override(cmd, "rps", &cfg.Serve.RequestsPerSecond, f.GetFloat64),
		override(cmd, "burst", &cfg.Serve.Burst, f.GetInt),
	} {
		if err != nil {
			return err
		}
	}
	opts, err := searchOptions(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	scorer, err := loadScorer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(scorer,
		server.WithLogger(logger),
		server.WithDefaults(opts),
		server.WithRateLimit(cfg.Serve.RequestsPerSecond, cfg.Serve.Burst),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d documents on http://%s\n", scorer.DocumentCount(), cfg.Serve.Address)
	return srv.ListenAndServe(ctx, cfg.Serve.Address)
}
