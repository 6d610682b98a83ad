package search

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"

	"github.com/nao1215/websearch/internal/analysis"
	"github.com/nao1215/websearch/internal/model"
)

// Default ranking options.
const (
	DefaultCosineWeight   = 0.7
	DefaultPageRankWeight = 0.3
	DefaultLimit          = 10
)

// ErrNegativeWeight is returned when a blend weight is negative.
var ErrNegativeWeight = errors.New("weights must be non-negative")

// Options controls how results are ranked.
type Options struct {
	// CosineWeight is w1, the weight of cosine similarity.
	CosineWeight float64

	// PageRankWeight is w2, the weight of the PageRank component.
	PageRankWeight float64

	// NormalizePageRank selects min-max normalized PageRank over raw scores.
	NormalizePageRank bool

	// Limit caps the number of results. Zero or less means no cap.
	Limit int
}

// DefaultOptions returns w1=0.7, w2=0.3, normalized PageRank, top 10.
func DefaultOptions() Options {
	return Options{
		CosineWeight:      DefaultCosineWeight,
		PageRankWeight:    DefaultPageRankWeight,
		NormalizePageRank: true,
		Limit:             DefaultLimit,
	}
}

// NormalizeWeights rescales w1 and w2 to sum to 1.
// Two zero weights become w1=1, w2=0.
func NormalizeWeights(w1, w2 float64) (float64, float64, error) {
	if w1 < 0 || w2 < 0 || math.IsNaN(w1) || math.IsNaN(w2) {
		return 0, 0, fmt.Errorf("%w: w1=%v w2=%v", ErrNegativeWeight, w1, w2)
	}
	total := w1 + w2
	if total == 0 {
		return 1, 0, nil
	}
	return w1 / total, w2 / total, nil
}

// Scorer answers queries against one index and PageRank vector.
// It is safe for concurrent use once created.
type Scorer struct {
	index    *model.Index
	pagerank *model.PageRank
	analyzer *analysis.Analyzer
}

// NewScorer creates a Scorer. Queries are analyzed with the settings stored
// in idx. A nil pagerank makes every PageRank component 0.
func NewScorer(idx *model.Index, pagerank *model.PageRank) *Scorer {
	return &Scorer{
		index:    idx,
		pagerank: pagerank,
		analyzer: analysis.FromSettings(idx.Analyzer),
	}
}

// DocumentCount returns the number of indexed documents.
func (s *Scorer) DocumentCount() int {
	return s.index.DocumentCount
}

// QueryVector returns the tf-idf weights of the query terms known to the
// index, and the vector's L2 norm.
func (s *Scorer) QueryVector(query string) (map[string]float64, float64) {
	tfs := s.analyzer.TermFrequencies(query)
	weights := make(map[string]float64, len(tfs))
	var sumSquares float64
	for _, term := range slices.Sorted(maps.Keys(tfs)) {
		tf := tfs[term]
		stats, ok := s.index.Dictionary[term]
		if !ok {
			continue
		}
		w := float64(tf) * stats.IDF
		weights[term] = w
		sumSquares += w * w
	}
	return weights, math.Sqrt(sumSquares)
}

// Cosine returns the cosine similarity of the query against every document
// sharing at least one term with it. Documents scoring 0 are omitted.
func (s *Scorer) Cosine(query string) map[int]float64 {
	weights, qNorm := s.QueryVector(query)
	scores := make(map[int]float64)
	if qNorm == 0 {
		return scores
	}

	// Sum in term order so repeated queries score bit-identically.
	dots := make(map[int]float64)
	for _, term := range slices.Sorted(maps.Keys(weights)) {
		qw := weights[term]
		for _, p := range s.index.Postings[term] {
			dots[p.DocID] += qw * p.Weight
		}
	}

	for docID, dot := range dots {
		dNorm := s.index.Norms[docID]
		if dNorm == 0 {
			continue
		}
		if cos := dot / (qNorm * dNorm); cos > 0 {
			scores[docID] = cos
		}
	}
	return scores
}

// Search ranks documents for query. An empty query, or one with no term
// in the index, returns an empty slice.
func (s *Scorer) Search(query string, opts Options) ([]model.Result, error) {
	w1, w2, err := NormalizeWeights(opts.CosineWeight, opts.PageRankWeight)
	if err != nil {
		return nil, err
	}

	cosines := s.Cosine(query)
	results := make([]model.Result, 0, len(cosines))
	for docID, cos := range cosines {
		pr := s.pagerank.Component(docID, opts.NormalizePageRank)
		meta := s.index.Documents[docID]
		results = append(results, model.Result{
			DocID:    docID,
			URL:      meta.URL,
			Title:    meta.Title,
			Snippet:  meta.Snippet,
			Score:    w1*cos + w2*pr,
			Cosine:   cos,
			PageRank: pr,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}
