package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/websearch/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// SearchResponse is the JSON document written for a query.
// The HTTP API returns the same shape.
type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []model.Result `json:"results"`
}

// NewSearchResponse wraps results for JSON output. A nil slice becomes
// an empty array.
func NewSearchResponse(query string, results []model.Result) *SearchResponse {
	if results == nil {
		results = []model.Result{}
	}
	return &SearchResponse{
		Query:   query,
		Count:   len(results),
		Results: results,
	}
}

// WriteResults outputs the results wrapped in a SearchResponse.
func (w *JSONWriter) WriteResults(query string, results []model.Result) (int, error) {
	return w.writeJSON(NewSearchResponse(query, results))
}

// WriteEvaluation outputs the evaluation in JSON format.
func (w *JSONWriter) WriteEvaluation(eval *model.Evaluation) (int, error) {
	return w.writeJSON(eval)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
