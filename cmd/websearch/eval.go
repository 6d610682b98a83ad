package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/eval"
	"github.com/nao1215/websearch/internal/report"
)

// NewEvalCmd creates the eval command.
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate ranking quality against relevance judgments",
		Long: `Eval runs every query of a CACM-style query file (.I <id> / .W <text>)
and scores the ranking against a qrels file of "query_id doc_id" lines.

It reports Average Precision and R-Precision per query, then MAP, mean
R-Precision and mean query latency.

Examples:
  websearch eval --queries query.text --qrels qrels.text
  websearch eval --queries query.text --qrels qrels.text -k 0 --format markdown`,
		Args: cobra.NoArgs,
		RunE: runEvalCmd,
	}

	addSearchFlags(cmd)
	cmd.Flags().String("queries", "", "Query file in .I/.W format")
	cmd.Flags().String("qrels", "", "Relevance judgments, one \"query_id doc_id\" pair per line")
	cmd.Flags().StringP("format", "f", report.FormatText, "Output format: text, json or markdown")
	_ = cmd.MarkFlagRequired("queries")
	_ = cmd.MarkFlagRequired("qrels")

	return cmd
}

func runEvalCmd(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	opts, err := searchOptions(cmd, cfg)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	queriesPath, err := f.GetString("queries")
	if err != nil {
		return err
	}
	qrelsPath, err := f.GetString("qrels")
	if err != nil {
		return err
	}
	format, err := f.GetString("format")
	if err != nil {
		return err
	}

	queries, err := eval.ReadQueries(queriesPath)
	if err != nil {
		return err
	}
	qrels, err := eval.ReadQrels(qrelsPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	scorer, err := loadScorer(ctx, cfg, logger)
	if err != nil {
		return err
	}

	result, err := eval.Evaluate(ctx, scorer, queries, qrels, opts)
	if err != nil {
		return err
	}

	var w report.Writer
	if format == "" || format == report.FormatText {
		w = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(cfg.Verbose))
	} else if w, err = report.NewWriter(format, cmd.OutOrStdout()); err != nil {
		return err
	}
	_, err = w.WriteEvaluation(result)
	return err
}
