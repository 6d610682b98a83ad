package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/websearch/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
//
// Each result takes three lines: the rank, title, URL and final score;
// the two score components; and the snippet.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-query latency and the retrieved count to
	// evaluation output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteResults outputs the ranked results in human-readable format.
func (w *SimpleWriter) WriteResults(_ string, results []model.Result) (int, error) {
	var sb strings.Builder

	if len(results) == 0 {
		sb.WriteString("No results.\n")
	}
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("%d. %s (%s) -> score=%.4f\n", r.Rank, r.Title, r.URL, r.Score))
		sb.WriteString(fmt.Sprintf("   Cosine=%.4f, PageRank=%.4f\n", r.Cosine, r.PageRank))
		sb.WriteString(fmt.Sprintf("   %s\n", r.Snippet))
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteEvaluation outputs the per-query metrics followed by the means.
func (w *SimpleWriter) WriteEvaluation(eval *model.Evaluation) (int, error) {
	var sb strings.Builder

	for _, q := range eval.Queries {
		sb.WriteString(fmt.Sprintf("Query ID: %d\n", q.QueryID))
		sb.WriteString(fmt.Sprintf("Average Precision: %.4f\n", q.AveragePrecision))
		sb.WriteString(fmt.Sprintf("R-Precision: %.4f\n", q.RPrecision))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("Relevant: %d, Retrieved: %d\n", q.Relevant, q.Retrieved))
			sb.WriteString(fmt.Sprintf("Duration: %s\n", q.Latency))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("MAP: %.4f\n", eval.MeanAveragePrecision))
	sb.WriteString(fmt.Sprintf("Average R-Precision: %.4f\n", eval.MeanRPrecision))
	sb.WriteString(fmt.Sprintf("Average time: %.6f seconds\n", eval.MeanLatency.Seconds()))

	return w.output.Write([]byte(sb.String()))
}
