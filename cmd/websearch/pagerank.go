package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/pipeline"
)

// NewPageRankCmd creates the pagerank command.
func NewPageRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagerank",
		Short: "Compute PageRank over the corpus link graph",
		Long: `PageRank builds the link graph of the crawled corpus and runs power
iteration until the L1 change falls below the tolerance or the iteration
limit is reached. Both raw and min-max normalized scores are stored.

Reaching the iteration limit is not an error; the last vector is kept
and a warning is logged.

Examples:
  websearch pagerank
  websearch pagerank --damping 0.9 --max-iter 200 --tol 1e-8`,
		Args: cobra.NoArgs,
		RunE: runPageRankCmd,
	}

	addPageRankFlags(cmd)
	cmd.Flags().String("corpus", "", "Corpus file path (default: <data-dir>/crawl/pages.jsonl)")

	return cmd
}

func runPageRankCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyPageRankFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	corpusPath, err := cmd.Flags().GetString("corpus")
	if err != nil {
		return err
	}
	if corpusPath == "" {
		corpusPath = cfg.CorpusPath()
	}

	engine, err := newEngine(cfg.PageRank)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	state := pipeline.NewState()
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewLoadCorpusStep(corpusPath, logger),
		pipeline.NewPageRankStep(engine, store, logger),
	)
	if err := p.Execute(ctx, state); err != nil {
		return err
	}

	pr := state.PageRank
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d documents\n", len(pr.Scores))
	fmt.Fprintf(out, "Iterations: %d\n", pr.Iterations)
	fmt.Fprintf(out, "Final delta: %.6e\n", pr.Delta)
	if !pr.Converged {
		fmt.Fprintln(out, "Warning: iteration limit reached before convergence")
	}
	fmt.Fprintf(out, "Output written to %s\n", store.Path())
	return nil
}
