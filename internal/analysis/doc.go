// Package analysis implements the text pipeline shared by the indexer and
// the query scorer: lowercase, split on non-alphanumeric boundaries, drop
// stopwords, and optionally stem with the Snowball English stemmer.
package analysis
