package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/websearch/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing. Results and per-query metrics are rendered as tables.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteResults outputs the ranked results as a Markdown table.
func (w *MarkdownWriter) WriteResults(query string, results []model.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search Results")
	md.PlainText("")
	md.PlainTextf("Query: `%s`", query)
	md.PlainText("")

	if len(results) == 0 {
		md.Note("No documents matched the query.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{
			strconv.Itoa(r.Rank),
			fmt.Sprintf("[%s](%s)", escapeCell(r.Title), r.URL),
			formatScore(r.Score),
			formatScore(r.Cosine),
			formatScore(r.PageRank),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Document", "Score", "Cosine", "PageRank"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range results {
		if r.Snippet != "" {
			md.Details(r.Title, r.Snippet)
		}
	}

	return len(md.String()), md.Build()
}

// WriteEvaluation outputs the summary metrics followed by a per-query table.
func (w *MarkdownWriter) WriteEvaluation(eval *model.Evaluation) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Evaluation")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Queries", strconv.Itoa(len(eval.Queries))},
			{"MAP", formatScore(eval.MeanAveragePrecision)},
			{"Mean R-Precision", formatScore(eval.MeanRPrecision)},
			{"Mean Latency", eval.MeanLatency.String()},
		},
	})
	md.PlainText("")

	if len(eval.Queries) > 0 {
		md.H2("Queries")
		md.PlainText("")

		rows := make([][]string, len(eval.Queries))
		for i, q := range eval.Queries {
			rows[i] = []string{
				strconv.Itoa(q.QueryID),
				escapeCell(truncateString(q.Query, 60)),
				strconv.Itoa(q.Relevant),
				formatScore(q.AveragePrecision),
				formatScore(q.RPrecision),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Query", "Relevant", "AP", "R-Precision"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// escapeCell keeps pipes and newlines from breaking table rows.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
