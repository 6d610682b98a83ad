package model

import "sort"

// TermStats is the dictionary entry of a term.
type TermStats struct {
	// DocumentFrequency is the number of documents containing the term.
	DocumentFrequency int `json:"df"`

	// IDF is log(N / DocumentFrequency).
	IDF float64 `json:"idf"`
}

// Posting is one entry of a postings list.
type Posting struct {
	DocID  int     `json:"doc_id"`
	Weight float64 `json:"weight"`
}

// DocMeta is the presentation metadata kept for each document.
type DocMeta struct {
	DocID   int    `json:"doc_id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// AnalyzerSettings records how the index text was analyzed, so that queries
// can be analyzed the same way.
type AnalyzerSettings struct {
	Stem      bool     `json:"stem"`
	Stopwords []string `json:"stopwords"`
}

// Index is the full set of artifacts produced by one indexer run.
type Index struct {
	// DocumentCount is N, the corpus size the IDF values were computed over.
	DocumentCount int `json:"document_count"`

	// Dictionary maps each term to its document frequency and IDF.
	Dictionary map[string]TermStats `json:"dictionary"`

	// Postings maps each term to its postings sorted by DocID.
	Postings map[string][]Posting `json:"postings"`

	// Norms maps each DocID to the L2 norm of its weight vector.
	Norms map[int]float64 `json:"doc_norms"`

	// Documents maps each DocID to its presentation metadata.
	Documents map[int]DocMeta `json:"documents"`

	// Analyzer is the text pipeline configuration used to build the index.
	Analyzer AnalyzerSettings `json:"analyzer"`
}

// NewIndex returns an empty Index with all maps allocated.
func NewIndex() *Index {
	return &Index{
		Dictionary: make(map[string]TermStats),
		Postings:   make(map[string][]Posting),
		Norms:      make(map[int]float64),
		Documents:  make(map[int]DocMeta),
	}
}

// Terms returns the vocabulary in lexicographic order.
func (idx *Index) Terms() []string {
	terms := make([]string, 0, len(idx.Dictionary))
	for term := range idx.Dictionary {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// DocIDs returns all indexed document identifiers in ascending order.
func (idx *Index) DocIDs() []int {
	ids := make([]int, 0, len(idx.Documents))
	for id := range idx.Documents {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
