// Package index builds the TF-IDF inverted index over a closed corpus.
//
// For a corpus of N documents, a term's inverse document frequency is
// ln(N/df) and its weight in a document is the raw term count times the
// idf. Every document gets an L2 norm over its weights and a metadata
// entry, even when it has no indexable terms.
package index
