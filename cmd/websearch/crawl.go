package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl pages breadth-first from seed URLs",
		Long: `Crawl fetches pages breadth-first from the seed URLs, obeying robots.txt
and a politeness delay, and writes the corpus as JSON Lines together with
a manifest mapping URLs to document ids.

Seeds given as arguments replace the seeds of the configuration file.
Only hosts of the seeds are visited unless --allowed-domain is given.

Examples:
  # Crawl up to 600 pages, two links deep
  websearch crawl https://example.com/

  # Small, fast crawl of a local site
  websearch crawl -p 50 -d 1 --delay 0 http://localhost:8000/

  # Skip wiki help pages and admin paths
  websearch crawl --skip-title "help:" --ignore "/admin/*" https://wiki.example.org/`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Corpus file path (default: <data-dir>/crawl/pages.jsonl)")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyCrawlFlags(cmd, args, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	corpusPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if corpusPath == "" {
		corpusPath = cfg.CorpusPath()
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	state := pipeline.NewState()
	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewCrawlStep(newSpider(cfg.Crawl, logger, out), cfg.Crawl, corpusPath,
		pipeline.WithCrawlLogger(logger)))

	err = p.Execute(ctx, state)
	if state.Corpus != nil {
		fmt.Fprintf(out, "Crawled %d documents. Output written to %s\n", state.Corpus.Len(), corpusPath)
	}
	return err
}
