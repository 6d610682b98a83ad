package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank documents for a free-text query",
		Long: `Search scores the indexed documents against the query with cosine
similarity over TF-IDF vectors and blends it with PageRank:

  score = w1 * cosine + w2 * pagerank

w1 and w2 are rescaled to sum to 1. Only documents sharing at least one
term with the query are returned.

Examples:
  websearch search "information retrieval"
  websearch search --w1 1 --w2 0 -k 20 ranking
  websearch search --format json pagerank`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	addSearchFlags(cmd)
	cmd.Flags().StringP("format", "f", report.FormatText, "Output format: text, json or markdown")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	opts, err := searchOptions(cmd, cfg)
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	w, err := report.NewWriter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	scorer, err := loadScorer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results, err := scorer.Search(query, opts)
	if err != nil {
		return err
	}
	_, err = w.WriteResults(query, results)
	return err
}
