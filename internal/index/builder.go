package index

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nao1215/websearch/internal/analysis"
	"github.com/nao1215/websearch/internal/model"
)

// DefaultSnippetLength is the number of runes of content kept as a snippet.
const DefaultSnippetLength = 240

var (
	// ErrEmptyCorpus is returned when there is nothing to index.
	ErrEmptyCorpus = errors.New("corpus has no documents")

	// ErrDuplicateDocID is returned when two documents share an id.
	ErrDuplicateDocID = errors.New("duplicate doc_id")
)

// Builder turns documents into an index.
type Builder struct {
	analyzer      *analysis.Analyzer
	snippetLength int
}

// Option configures a Builder.
type Option func(*Builder)

// WithSnippetLength sets the snippet length in runes.
func WithSnippetLength(n int) Option {
	return func(b *Builder) {
		b.snippetLength = n
	}
}

// NewBuilder creates a Builder. A nil analyzer keeps every token and
// does not stem.
func NewBuilder(analyzer *analysis.Analyzer, opts ...Option) *Builder {
	if analyzer == nil {
		analyzer = analysis.New()
	}
	b := &Builder{
		analyzer:      analyzer,
		snippetLength: DefaultSnippetLength,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build indexes docs. The result depends only on the documents' contents
// and ids, never on their order in docs.
func (b *Builder) Build(docs []*model.Document) (*model.Index, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	ordered := make([]*model.Document, len(docs))
	copy(ordered, docs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].DocID < ordered[j].DocID })

	idx := model.NewIndex()
	idx.DocumentCount = len(ordered)
	idx.Analyzer = b.analyzer.Settings()

	counts := make([]map[string]int, len(ordered))
	df := make(map[string]int)
	for i, doc := range ordered {
		if i > 0 && ordered[i-1].DocID == doc.DocID {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateDocID, doc.DocID)
		}

		counts[i] = b.analyzer.TermFrequencies(doc.Title + " " + doc.Content)
		for term := range counts[i] {
			df[term]++
		}

		idx.Documents[doc.DocID] = model.DocMeta{
			DocID:   doc.DocID,
			URL:     doc.URL,
			Title:   doc.Title,
			Snippet: Snippet(doc.Content, b.snippetLength),
		}
	}

	n := float64(len(ordered))
	for term, freq := range df {
		idx.Dictionary[term] = model.TermStats{
			DocumentFrequency: freq,
			IDF:               math.Log(n / float64(freq)),
		}
	}

	// Walking documents in id order keeps every postings list sorted.
	for i, doc := range ordered {
		terms := make([]string, 0, len(counts[i]))
		for term := range counts[i] {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		var sumSquares float64
		for _, term := range terms {
			weight := float64(counts[i][term]) * idx.Dictionary[term].IDF
			idx.Postings[term] = append(idx.Postings[term], model.Posting{DocID: doc.DocID, Weight: weight})
			sumSquares += weight * weight
		}
		idx.Norms[doc.DocID] = math.Sqrt(sumSquares)
	}

	return idx, nil
}

// Snippet returns the first n runes of content.
func Snippet(content string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range content {
		if count == n {
			return content[:i]
		}
		count++
	}
	return content
}
