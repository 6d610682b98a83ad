// Package pipeline runs the search engine stages as a sequence of steps.
//
// A crawl, an index build and a PageRank run are each a Step operating on
// a shared State. The index and PageRank stages only read the closed
// corpus, so Parallel can run them side by side once the crawl finished.
package pipeline
