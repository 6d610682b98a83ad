package model

import "time"

// Document is a single crawled page.
//
// A Document is created once by the crawler and never mutated afterwards.
// DocID is assigned sequentially starting at 1 and is never reused, and URL
// is the canonical form used as the deduplication key.
type Document struct {
	// DocID is the stable identifier assigned at crawl time.
	DocID int `json:"doc_id"`

	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Title is the text of the <title> element, or the URL when absent.
	Title string `json:"title"`

	// Content is the extracted visible text of the page.
	Content string `json:"content"`

	// HTML is the raw markup. It is only kept when requested.
	HTML string `json:"html,omitempty"`

	// Outlinks are the canonical URLs linked from this page that fall inside
	// the allowed domain, in document order without duplicates.
	Outlinks []string `json:"links"`

	// Depth is the BFS depth at which the page was fetched (seeds are 0).
	Depth int `json:"depth"`

	// ParentURL is the page that discovered this one. Empty for seeds.
	ParentURL string `json:"parent_url,omitempty"`
}

// Manifest describes one crawl run. It is written next to the corpus so that
// later stages can map URLs back to document identifiers.
type Manifest struct {
	CrawlID        string         `json:"crawl_id"`
	TotalDocuments int            `json:"total_documents"`
	Corpus         string         `json:"output"`
	Seeds          []string       `json:"seeds"`
	AllowedDomains []string       `json:"allowed_domains,omitempty"`
	MaxPages       int            `json:"max_pages"`
	MaxDepth       int            `json:"max_depth"`
	Delay          float64        `json:"delay"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	URLToID        map[string]int `json:"url_to_id"`
}
