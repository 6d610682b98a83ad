// Package database provides SQLite-based storage for the index and
// PageRank artifacts.
//
// One database file holds the dictionary, postings, document norms,
// document metadata and PageRank vectors. Each artifact is replaced as a
// whole inside a single transaction, so a failed write leaves the previous
// artifact readable.
//
// We use SQLite via modernc.org/sqlite: the artifacts live in a single
// CGO-free file that the search server opens read-mostly.
package database
