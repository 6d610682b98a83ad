// Package model defines the data structures exchanged between the stages of
// websearch: crawled documents, index artifacts, PageRank vectors, ranked
// results and evaluation summaries.
//
// Design decision: We keep these types in their own package so that the
// crawler, indexer, ranking engine, store, and report writers can all share
// them without importing each other.
//
// Every type is serializable to JSON for corpus files and report output.
package model
