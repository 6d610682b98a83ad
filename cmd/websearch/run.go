package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/index"
	"github.com/nao1215/websearch/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [seed-url...]",
		Short: "Crawl, then build the index and PageRank",
		Long: `Run executes the whole offline pipeline: it crawls from the seeds, then
builds the TF-IDF index and computes PageRank concurrently over the
finished corpus.

Accepts every flag of crawl, index and pagerank.

Examples:
  websearch run https://example.com/
  websearch run -p 100 --stem https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	addCrawlFlags(cmd)
	addIndexFlags(cmd)
	addPageRankFlags(cmd)

	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, args, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := applyIndexFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyPageRankFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	analyzer, err := newAnalyzer(cfg.Index)
	if err != nil {
		return err
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

	out := cmd.OutOrStdout()
	corpusPath := cfg.CorpusPath()
	builder := index.NewBuilder(analyzer, index.WithSnippetLength(cfg.Index.SnippetLength))

	state := pipeline.NewState()
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(newSpider(cfg.Crawl, logger, out), cfg.Crawl, corpusPath,
			pipeline.WithCrawlLogger(logger)),
		pipeline.Parallel(
			pipeline.NewIndexStep(builder, store, logger),
			pipeline.NewPageRankStep(engine, store, logger),
		),
	)
	if err := p.Execute(ctx, state); err != nil {
		return err
	}

	fmt.Fprintf(out, "Crawled %d documents. Output written to %s\n", state.Corpus.Len(), corpusPath)
	fmt.Fprintf(out, "Indexed %d documents, vocabulary size %d\n",
		state.Index.DocumentCount, len(state.Index.Dictionary))
	fmt.Fprintf(out, "PageRank: %d iterations, final delta %.6e\n", state.PageRank.Iterations, state.PageRank.Delta)
	fmt.Fprintf(out, "Artifacts written to %s\n", store.Path())
	return nil
}
