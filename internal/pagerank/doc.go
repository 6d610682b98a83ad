// Package pagerank computes PageRank over the crawled link graph by power
// iteration.
//
// Dangling nodes (no out-links) spread their rank uniformly over every
// node, so the vector always sums to 1. Each iteration is computed by
// pulling from in-links; nodes are split across workers, and every node's
// sum is taken in a fixed order, so the result is identical for any worker
// count.
package pagerank
