package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/index"
	"github.com/nao1215/websearch/internal/pipeline"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the TF-IDF index of the crawled corpus",
		Long: `Index reads the crawled corpus and builds the dictionary, postings,
document norms and document metadata, replacing any previous index.

The analyzer settings (stopwords, stemming) are stored with the index and
reused for queries.

Examples:
  websearch index
  websearch index --stem --stopwords stopwords.txt`,
		Args: cobra.NoArgs,
		RunE: runIndexCmd,
	}

	addIndexFlags(cmd)
	cmd.Flags().String("corpus", "", "Corpus file path (default: <data-dir>/crawl/pages.jsonl)")

	return cmd
}

func runIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyIndexFlags(cmd, cfg); err != nil {
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

	analyzer, err := newAnalyzer(cfg.Index)
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
		pipeline.NewIndexStep(index.NewBuilder(analyzer, index.WithSnippetLength(cfg.Index.SnippetLength)), store, logger),
	)
	if err := p.Execute(ctx, state); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents, vocabulary size %d\n",
		state.Index.DocumentCount, len(state.Index.Dictionary))
	fmt.Fprintf(cmd.OutOrStdout(), "Index written to %s\n", store.Path())
	return nil
}
