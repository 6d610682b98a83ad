package analysis

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed stopwords.txt
var defaultStopwords string

// StopwordSet is a set of lowercased stopwords.
type StopwordSet map[string]struct{}

// DefaultStopwords returns a fresh copy of the built-in English stopword list.
func DefaultStopwords() StopwordSet {
	set, err := ReadStopwords(strings.NewReader(defaultStopwords))
	if err != nil {
		// The embedded list is plain text; reading it cannot fail.
		panic(err)
	}
	return set
}

// LoadStopwords reads a stopword file.
func LoadStopwords(path string) (StopwordSet, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided stopword path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open stopwords file: %w", err)
	}
	defer f.Close()

	return ReadStopwords(f)
}

// ReadStopwords reads one stopword per line. Words are trimmed and
// lowercased; blank lines and lines starting with '#' are ignored.
func ReadStopwords(r io.Reader) (StopwordSet, error) {
	set := make(StopwordSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return set, nil
}

// NewStopwordSet builds a set from a word list.
func NewStopwordSet(words ...string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Contains reports whether word is a stopword.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Sorted returns the words in lexicographic order.
func (s StopwordSet) Sorted() []string {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
