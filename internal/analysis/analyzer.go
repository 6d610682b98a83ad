package analysis

import (
	"regexp"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/websearch/internal/model"
)

// tokenPattern matches the runs of ASCII letters and digits kept as tokens.
// Everything else, including non-ASCII letters, is a boundary.
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Analyzer turns text into index terms.
//
// The same Analyzer must be used for documents and queries: a query term
// that is stemmed or filtered differently from the indexed text silently
// matches nothing. Settings and FromSettings exist so that the scorer can
// rebuild the exact analyzer the index was built with.
type Analyzer struct {
	stopwords StopwordSet
	stem      bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStopwords sets the stopword set. Without it, no words are dropped.
func WithStopwords(set StopwordSet) Option {
	return func(a *Analyzer) {
		a.stopwords = set
	}
}

// WithStemming enables Snowball English stemming of surviving tokens.
func WithStemming(enabled bool) Option {
	return func(a *Analyzer) {
		a.stem = enabled
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{stopwords: make(StopwordSet)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FromSettings rebuilds the Analyzer recorded in an index.
func FromSettings(s model.AnalyzerSettings) *Analyzer {
	return New(WithStopwords(NewStopwordSet(s.Stopwords...)), WithStemming(s.Stem))
}

// Settings returns the persisted form of the analyzer configuration.
func (a *Analyzer) Settings() model.AnalyzerSettings {
	return model.AnalyzerSettings{
		Stem:      a.stem,
		Stopwords: a.stopwords.Sorted(),
	}
}

// Tokenize lowercases text and splits it into alphanumeric tokens.
// No stopword filtering or stemming is applied.
func Tokenize(text string) []string {
	// A Caser keeps state between calls and is not safe for concurrent use.
	lower := cases.Lower(language.Und).String(text)
	return tokenPattern.FindAllString(lower, -1)
}

// Analyze runs the full pipeline: tokenize, drop stopwords, optionally stem.
func (a *Analyzer) Analyze(text string) []string {
	tokens := Tokenize(text)
	terms := tokens[:0]
	for _, tok := range tokens {
		if a.stopwords.Contains(tok) {
			continue
		}
		if a.stem {
			tok = english.Stem(tok, true)
		}
		terms = append(terms, tok)
	}
	return terms
}

// TermFrequencies returns the raw count of each analyzed term in text.
func (a *Analyzer) TermFrequencies(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range a.Analyze(text) {
		counts[term]++
	}
	return counts
}
