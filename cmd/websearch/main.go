// Package main provides the entry point for the websearch CLI.
//
// websearch crawls a site politely, builds a TF-IDF index and a PageRank
// vector over the crawled pages, and answers queries by blending cosine
// similarity with PageRank.
//
// Usage:
//
//	websearch crawl https://example.com/
//	websearch index
//	websearch pagerank
//	websearch search "link analysis"
//
// See --help for all available options.
package main

func main() {
	Execute()
}
