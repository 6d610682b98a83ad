package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/websearch/internal/model"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Output format names accepted by NewWriter.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Writer defines the interface for report output.
// Implementations render search results and evaluation summaries in
// various formats.
type Writer interface {
	// WriteResults outputs the ranked results of one query.
	// Returns the number of bytes written and any error encountered.
	WriteResults(query string, results []model.Result) (int, error)

	// WriteEvaluation outputs the metrics of an evaluation run.
	WriteEvaluation(eval *model.Evaluation) (int, error)
}

// NewWriter returns the Writer for the named format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteResults outputs the results to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteResults(query string, results []model.Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteResults(query, results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteEvaluation outputs the evaluation to all configured Writers.
func (m *MultiWriter) WriteEvaluation(eval *model.Evaluation) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteEvaluation(eval)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
