// Package crawler provides a polite breadth-first web crawler.
//
// # Architecture
//
// The Spider type coordinates a crawl. It keeps a FIFO frontier of
// (url, depth, parent) entries, a discovered set that keeps any URL from
// being queued twice, and a visited set of URLs already acted on. Pages are
// fetched sequentially; a politeness delay separates consecutive requests.
//
// # Components
//
//   - Spider: the crawl loop, fetches pages and assigns doc_ids
//   - Parser: extracts title, visible text and content links from HTML
//   - RobotsCache: per-host robots.txt rules for the crawl's user agent
//   - Canonicalize: the URL normal form used as the deduplication key
//
// # Usage
//
//	spider := crawler.NewSpider(nil, crawler.WithMaxDepth(2))
//	docs, err := spider.Crawl(ctx, []string{"https://en.wikipedia.org/wiki/Information_retrieval"})
//
// Failures on individual pages (network errors, non-200 responses,
// non-HTML content) are logged at debug level and skipped. They never abort
// the crawl.
package crawler
