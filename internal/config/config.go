package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Crawl defaults match the limits the search engine was tuned with; ranking
// defaults are the textbook PageRank parameters.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "websearch"

	// DefaultMaxPages bounds the corpus size of a crawl.
	DefaultMaxPages = 600

	// DefaultMaxDepth is the BFS depth limit. Seeds are at depth 0.
	DefaultMaxDepth = 2

	// DefaultCrawlDelay is the politeness delay applied after each page.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultFetchTimeout is the timeout of a single page fetch.
	DefaultFetchTimeout = 15 * time.Second

	// DefaultRobotsTimeout is the timeout of a robots.txt fetch.
	DefaultRobotsTimeout = 10 * time.Second

	// DefaultUserAgent identifies the crawler in requests and robots.txt groups.
	DefaultUserAgent = "websearch-bot/1.0 (+https://github.com/nao1215/websearch)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultSnippetLength is the number of characters of content kept as a snippet.
	DefaultSnippetLength = 240

	// DefaultDamping is the PageRank damping factor.
	DefaultDamping = 0.85

	// DefaultMaxIterations bounds the number of power iterations.
	DefaultMaxIterations = 100

	// DefaultTolerance is the L1 convergence threshold.
	DefaultTolerance = 1e-6

	// DefaultCosineWeight is w1, the weight of cosine similarity.
	DefaultCosineWeight = 0.7

	// DefaultPageRankWeight is w2, the weight of the PageRank component.
	DefaultPageRankWeight = 0.3

	// DefaultResultLimit is K, the number of results returned.
	DefaultResultLimit = 10

	// DefaultListenAddress is the address the web UI binds to.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultRequestsPerSecond is the steady-state query rate of the web UI.
	DefaultRequestsPerSecond = 20.0

	// DefaultRequestBurst is the burst size of the web UI rate limiter.
	DefaultRequestBurst = 40
)

// Config holds all configuration options for websearch.
// It is populated from defaults, then the YAML config file, then CLI flags,
// and passed through the application rather than held as global state.
//
// Design decision: Unlike a single flat struct, options are grouped by the
// stage that consumes them. Each stage only receives its own section, which
// keeps the typed configuration handed between stages small.
type Config struct {
	// DataDir is the root directory for the corpus and index artifacts.
	// Defaults to the XDG data directory (~/.local/share/websearch on Linux).
	DataDir string `yaml:"data_dir"`

	Crawl    CrawlConfig    `yaml:"crawl"`
	Index    IndexConfig    `yaml:"index"`
	PageRank PageRankConfig `yaml:"pagerank"`
	Search   SearchConfig   `yaml:"search"`
	Serve    ServeConfig    `yaml:"serve"`

	// Verbose enables debug logging. It is only set from the CLI.
	Verbose bool `yaml:"-"`

	// LogJSON switches log output to JSON.
	LogJSON bool `yaml:"log_json"`
}

// CrawlConfig configures the crawler stage.
type CrawlConfig struct {
	// Seeds are the URLs the crawl starts from, at depth 0.
	Seeds []string `yaml:"seeds"`

	// AllowedDomains restricts the crawl to these hosts.
	// When empty, the hosts of the seeds are used.
	AllowedDomains []string `yaml:"allowed_domains"`

	MaxPages      int           `yaml:"max_pages"`
	MaxDepth      int           `yaml:"max_depth"`
	Delay         time.Duration `yaml:"delay"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	RobotsTimeout time.Duration `yaml:"robots_timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodySize   int64         `yaml:"max_body_size"`

	// KeepHTML stores the raw markup of each page in the corpus.
	KeepHTML bool `yaml:"keep_html"`

	// IgnorePatterns are URL path globs whose links are never followed.
	IgnorePatterns []string `yaml:"ignore_patterns"`

	// FollowPatterns, when set, restrict followed links to matching paths.
	FollowPatterns []string `yaml:"follow_patterns"`

	// SkipTitleSubstrings drops fetched pages whose title contains any of
	// these, compared case-insensitively.
	SkipTitleSubstrings []string `yaml:"skip_title_substrings"`
}

// IndexConfig configures the text pipeline and the indexer stage.
type IndexConfig struct {
	// StopwordsFile is a file with one stopword per line.
	// When empty, the built-in English list is used.
	StopwordsFile string `yaml:"stopwords_file"`

	// Stem enables Snowball English stemming.
	Stem bool `yaml:"stem"`

	// SnippetLength is the content prefix length stored for presentation.
	SnippetLength int `yaml:"snippet_length"`
}

// PageRankConfig configures the PageRank stage.
type PageRankConfig struct {
	Damping       float64 `yaml:"damping"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`

	// Normalize reports min-max normalized scores as the primary output.
	// Both raw and normalized scores are always stored.
	Normalize bool `yaml:"normalize"`

	// Workers is the number of goroutines used per iteration.
	// Zero means one per CPU.
	Workers int `yaml:"workers"`
}

// SearchConfig configures the query scorer.
type SearchConfig struct {
	CosineWeight      float64 `yaml:"w1"`
	PageRankWeight    float64 `yaml:"w2"`
	NormalizePageRank bool    `yaml:"normalize_pagerank"`
	Limit             int     `yaml:"limit"`
}

// ServeConfig configures the web UI.
type ServeConfig struct {
	Address           string  `yaml:"address"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (limits, weights, delays).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DataDir: XDGDataDir(),
		Crawl: CrawlConfig{
			MaxPages:      DefaultMaxPages,
			MaxDepth:      DefaultMaxDepth,
			Delay:         DefaultCrawlDelay,
			FetchTimeout:  DefaultFetchTimeout,
			RobotsTimeout: DefaultRobotsTimeout,
			UserAgent:     DefaultUserAgent,
			MaxBodySize:   DefaultMaxBodySize,
		},
		Index: IndexConfig{
			SnippetLength: DefaultSnippetLength,
		},
		PageRank: PageRankConfig{
			Damping:       DefaultDamping,
			MaxIterations: DefaultMaxIterations,
			Tolerance:     DefaultTolerance,
		},
		Search: SearchConfig{
			CosineWeight:      DefaultCosineWeight,
			PageRankWeight:    DefaultPageRankWeight,
			NormalizePageRank: true,
			Limit:             DefaultResultLimit,
		},
		Serve: ServeConfig{
			Address:           DefaultListenAddress,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultRequestBurst,
		},
	}
}

// XDGDataDir returns the XDG data directory for websearch.
// On Linux: ~/.local/share/websearch
// On macOS: ~/Library/Application Support/websearch
// On Windows: %LOCALAPPDATA%\websearch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for websearch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// CorpusPath returns the path of the crawled corpus (JSON Lines).
func (c *Config) CorpusPath() string {
	return filepath.Join(c.DataDir, "crawl", "pages.jsonl")
}

// IndexDir returns the directory holding the artifact database.
func (c *Config) IndexDir() string {
	return filepath.Join(c.DataDir, "index")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, so callers can
// use errors.Is for programmatic handling.
// Seeds are not checked here because only the crawl stage needs them;
// see ValidateCrawl.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.Crawl.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Crawl.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Crawl.Delay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.Crawl.FetchTimeout <= 0 || c.Crawl.RobotsTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Crawl.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Index.SnippetLength < 0 {
		return ErrInvalidSnippetLength
	}
	if c.PageRank.Damping <= 0 || c.PageRank.Damping >= 1 {
		return ErrInvalidDamping
	}
	if c.PageRank.MaxIterations < 1 {
		return ErrInvalidMaxIterations
	}
	if c.PageRank.Tolerance < 0 {
		return ErrInvalidTolerance
	}
	if c.PageRank.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.Search.CosineWeight < 0 || c.Search.PageRankWeight < 0 {
		return ErrInvalidWeight
	}
	if c.Serve.RequestsPerSecond < 0 || c.Serve.Burst < 0 {
		return ErrInvalidRateLimit
	}
	// A limiter with burst 0 admits no request at all.
	if c.Serve.RequestsPerSecond > 0 && c.Serve.Burst < 1 {
		return ErrInvalidRateLimit
	}
	return nil
}

// ValidateCrawl additionally checks the settings only the crawl stage needs.
func (c *Config) ValidateCrawl() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Crawl.Seeds) == 0 {
		return ErrNoSeeds
	}
	return nil
}
