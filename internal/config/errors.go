package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoSeeds is returned when a crawl is requested without seed URLs.
	ErrNoSeeds = errors.New("no seeds specified: provide seed URLs as arguments or in the config file")

	// ErrNoDataDir is returned when the data directory is empty.
	ErrNoDataDir = errors.New("invalid data directory: must not be empty")

	// ErrInvalidMaxPages is returned when max_pages is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when max_depth is negative.
	// Depth 0 is valid and crawls only the seeds.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidTimeout is returned when a fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidSnippetLength is returned when the snippet length is negative.
	ErrInvalidSnippetLength = errors.New("invalid snippet length: must be non-negative")

	// ErrInvalidDamping is returned when the damping factor is outside (0,1).
	ErrInvalidDamping = errors.New("invalid damping factor: must be in (0, 1)")

	// ErrInvalidMaxIterations is returned when max_iterations is below 1.
	ErrInvalidMaxIterations = errors.New("invalid max iterations: must be at least 1")

	// ErrInvalidTolerance is returned when the tolerance is negative.
	ErrInvalidTolerance = errors.New("invalid tolerance: must be non-negative")

	// ErrInvalidWorkers is returned when the PageRank worker count is negative.
	ErrInvalidWorkers = errors.New("invalid workers: must be non-negative")

	// ErrInvalidWeight is returned when w1 or w2 is negative.
	ErrInvalidWeight = errors.New("invalid weight: w1 and w2 must be non-negative")

	// ErrInvalidRateLimit is returned when the web UI rate limit is negative,
	// or when limiting is enabled with a burst below 1.
	ErrInvalidRateLimit = errors.New("invalid rate limit: rate must be non-negative and burst at least 1")
)
