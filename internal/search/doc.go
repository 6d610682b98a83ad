// Package search ranks indexed documents for a query by blending cosine
// similarity with PageRank.
package search
