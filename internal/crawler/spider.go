package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/websearch/internal/corpus"
	"github.com/nao1215/websearch/internal/model"
)

var (
	// ErrFetch is wrapped by every page fetch failure: transport errors,
	// redirects leaving the allowed domains, non-200 responses, non-HTML
	// content and body read errors.
	ErrFetch = errors.New("fetch failed")

	// ErrNoSeeds is returned when no seed survives canonicalization.
	ErrNoSeeds = errors.New("no valid seed urls")
)

// Default crawl limits.
const (
	DefaultMaxPages      = 600
	DefaultMaxDepth      = 2
	DefaultDelay         = 1 * time.Second
	DefaultFetchTimeout  = 15 * time.Second
	DefaultRobotsTimeout = 10 * time.Second
	DefaultMaxBodySize   = 10 * 1024 * 1024
	DefaultUserAgent     = "websearch-bot/1.0"
)

// Spider crawls a bounded set of hosts breadth-first.
//
// Pages are fetched one at a time. Each canonical URL is fetched at most
// once per crawl, robots.txt is honored, and the politeness delay is
// applied between consecutive fetches.
type Spider struct {
	// client performs page and robots.txt requests.
	client *http.Client

	// maxDepth limits how deep to crawl from the seeds.
	// 0 means only the seeds, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the number of documents stored.
	maxPages int

	// delay is the time to wait between requests.
	delay time.Duration

	userAgent     string
	maxBodySize   int64
	robotsTimeout time.Duration

	// allowedDomains restricts which hosts are crawled.
	// Empty means the hosts of the seeds.
	allowedDomains []string

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	followPatterns []string

	// skipTitles drops pages whose lowercased title contains any entry.
	skipTitles []string

	keepHTML bool
	progress ProgressFunc
	logger   *slog.Logger
}

// Progress describes one stored document.
type Progress struct {
	DocID       int
	MaxPages    int
	URL         string
	Depth       int
	ParentURL   string
	FrontierLen int

	// PageTime is the time spent fetching and parsing this page.
	PageTime time.Duration

	// ProcessingTime is the sum of PageTime over the crawl so far.
	ProcessingTime time.Duration

	// WallTime is the elapsed time since the crawl started, delays included.
	WallTime time.Duration
}

// ProgressFunc receives a Progress after each stored document.
type ProgressFunc func(Progress)

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to store.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithUserAgent sets the User-Agent header and the robots.txt agent name.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// WithRobotsTimeout sets the timeout for robots.txt requests.
func WithRobotsTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.robotsTimeout = d
	}
}

// WithAllowedDomains restricts crawling to the given hosts.
// A domain matches a URL's host, with or without port, case-insensitively.
func WithAllowedDomains(domains []string) SpiderOption {
	return func(s *Spider) {
		s.allowedDomains = domains
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are followed.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithSkipTitleSubstrings drops fetched pages whose title contains any of
// the given substrings (case-insensitive). Dropped pages get no doc_id.
func WithSkipTitleSubstrings(substrings []string) SpiderOption {
	return func(s *Spider) {
		s.skipTitles = make([]string, 0, len(substrings))
		for _, sub := range substrings {
			if sub = strings.ToLower(strings.TrimSpace(sub)); sub != "" {
				s.skipTitles = append(s.skipTitles, sub)
			}
		}
	}
}

// WithKeepHTML stores the raw markup in each document.
func WithKeepHTML(keep bool) SpiderOption {
	return func(s *Spider) {
		s.keepHTML = keep
	}
}

// WithProgress sets a callback invoked after each stored document.
func WithProgress(fn ProgressFunc) SpiderOption {
	return func(s *Spider) {
		s.progress = fn
	}
}

// WithLogger sets the logger for skipped and failed URLs.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider. A nil client is replaced by one with
// DefaultFetchTimeout.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	s := &Spider{
		client:        client,
		maxDepth:      DefaultMaxDepth,
		maxPages:      DefaultMaxPages,
		delay:         DefaultDelay,
		userAgent:     DefaultUserAgent,
		maxBodySize:   DefaultMaxBodySize,
		robotsTimeout: DefaultRobotsTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// queueItem is a frontier entry.
type queueItem struct {
	url    string
	depth  int
	parent string
}

// crawl holds the state of one Crawl call.
type crawl struct {
	client     *http.Client
	corpus     *corpus.Corpus
	robots     *RobotsCache
	allowed    map[string]struct{}
	queue      []queueItem
	discovered map[string]struct{}
	visited    map[string]struct{}
	started    time.Time
	processing time.Duration
}

// Crawl fetches pages breadth-first from seeds and returns the corpus.
//
// The crawl ends when the frontier is empty or maxPages documents are
// stored. When ctx is cancelled the documents gathered so far are returned
// together with ctx.Err(). Individual page failures never abort a crawl.
func (s *Spider) Crawl(ctx context.Context, seeds []string) (*corpus.Corpus, error) {
	st := &crawl{
		corpus:     corpus.New(),
		robots:     NewRobotsCache(s.client, s.userAgent, s.robotsTimeout, s.logger),
		queue:      make([]queueItem, 0, len(seeds)),
		discovered: make(map[string]struct{}),
		visited:    make(map[string]struct{}),
		started:    time.Now(),
	}

	seedHosts := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		canonical, err := Canonicalize(seed)
		if err != nil {
			s.logger.Warn("ignoring seed", "seed", seed, "error", err)
			continue
		}
		if _, dup := st.discovered[canonical]; dup {
			continue
		}
		st.discovered[canonical] = struct{}{}
		st.queue = append(st.queue, queueItem{url: canonical, depth: 0})

		u, _ := url.Parse(canonical)
		seedHosts = append(seedHosts, u.Host)
	}
	if len(st.queue) == 0 {
		return st.corpus, ErrNoSeeds
	}

	domains := s.allowedDomains
	if len(domains) == 0 {
		domains = seedHosts
	}
	st.allowed = make(map[string]struct{}, len(domains))
	for _, d := range domains {
		st.allowed[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	st.client = s.sameDomainClient(st)

	for len(st.queue) > 0 && st.corpus.Len() < s.maxPages {
		if err := ctx.Err(); err != nil {
			return st.corpus, err
		}

		item := st.queue[0]
		st.queue = st.queue[1:]

		if _, done := st.visited[item.url]; done {
			continue
		}
		st.visited[item.url] = struct{}{}

		requested, err := s.visit(ctx, st, item)
		if err != nil {
			return st.corpus, err
		}

		if requested && len(st.queue) > 0 {
			if err := s.pause(ctx); err != nil {
				return st.corpus, err
			}
		}
	}

	return st.corpus, nil
}

// visit processes one dequeued URL. It reports whether a request was
// sent, which is what the politeness delay keys on.
func (s *Spider) visit(ctx context.Context, st *crawl, item queueItem) (bool, error) {
	u, err := url.Parse(item.url)
	if err != nil || !st.isAllowed(u) {
		s.logger.Debug("skipping url outside allowed domains", "url", item.url)
		return false, nil
	}

	robotsFetched := !st.robots.Cached(u)
	if !st.robots.Allowed(ctx, u) {
		s.logger.Debug("skipping url disallowed by robots.txt", "url", item.url)
		return robotsFetched, nil
	}
	if robotsFetched {
		if err := s.pause(ctx); err != nil {
			return false, err
		}
	}

	pageStart := time.Now()
	page, err := s.fetch(ctx, st.client, item.url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		s.logger.Debug("skipping url", "url", item.url, "error", err)
		return true, nil
	}

	if s.skipTitle(page.title) {
		s.logger.Debug("skipping page by title", "url", item.url, "title", page.title)
		return true, nil
	}

	outlinks := make([]string, 0, len(page.links))
	for _, link := range page.links {
		lu, err := url.Parse(link)
		if err != nil || !st.isAllowed(lu) {
			continue
		}
		outlinks = append(outlinks, link)
	}

	doc := &model.Document{
		DocID:     st.corpus.NextID(),
		URL:       item.url,
		Title:     page.title,
		Content:   page.text,
		Outlinks:  outlinks,
		Depth:     item.depth,
		ParentURL: item.parent,
	}
	if s.keepHTML {
		doc.HTML = page.html
	}
	if err := st.corpus.Add(doc); err != nil {
		// Unreachable: visited guarantees a fresh URL and NextID a fresh id.
		return false, fmt.Errorf("failed to store %s: %w", item.url, err)
	}

	if item.depth+1 <= s.maxDepth {
		for _, link := range outlinks {
			if _, seen := st.discovered[link]; seen {
				continue
			}
			if !s.shouldCrawl(link) {
				continue
			}
			st.discovered[link] = struct{}{}
			st.queue = append(st.queue, queueItem{url: link, depth: item.depth + 1, parent: item.url})
		}
	}

	pageTime := time.Since(pageStart)
	st.processing += pageTime
	if s.progress != nil {
		s.progress(Progress{
			DocID:          doc.DocID,
			MaxPages:       s.maxPages,
			URL:            doc.URL,
			Depth:          doc.Depth,
			ParentURL:      doc.ParentURL,
			FrontierLen:    len(st.queue),
			PageTime:       pageTime,
			ProcessingTime: st.processing,
			WallTime:       time.Since(st.started),
		})
	}

	return true, nil
}

func (st *crawl) isAllowed(u *url.URL) bool {
	if _, ok := st.allowed[strings.ToLower(u.Host)]; ok {
		return true
	}
	_, ok := st.allowed[strings.ToLower(u.Hostname())]
	return ok
}

// fetchedPage is a successfully fetched and parsed HTML page.
type fetchedPage struct {
	title string
	text  string
	html  string
	links []string
}

// pause waits out the politeness delay.
func (s *Spider) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

// maxRedirects matches the net/http default policy.
const maxRedirects = 10

// sameDomainClient returns a copy of the spider's client that refuses
// redirects leaving the allowed domains.
func (s *Spider) sameDomainClient(st *crawl) *http.Client {
	c := *s.client
	next := s.client.CheckRedirect
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if !st.isAllowed(req.URL) {
			return fmt.Errorf("%w: redirect to %s outside allowed domains", ErrFetch, req.URL.Redacted())
		}
		if next != nil {
			return next(req, via)
		}
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: stopped after %d redirects", ErrFetch, maxRedirects)
		}
		return nil
	}
	return &c
}

// fetch downloads and parses a single page.
func (s *Spider) fetch(ctx context.Context, client *http.Client, pageURL string) (*fetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("%w: content type %q", ErrFetch, contentType)
	}

	// Decode to UTF-8 using the declared or sniffed charset.
	body, err := charset.NewReader(io.LimitReader(resp.Body, s.maxBodySize), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	// Resolve links against the final URL after redirects.
	base := resp.Request.URL
	parsed, err := newParser(base).Parse(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	title := parsed.Title
	if title == "" {
		title = pageURL
	}

	return &fetchedPage{
		title: title,
		text:  parsed.Text,
		html:  string(raw),
		links: parsed.Links,
	}, nil
}

func (s *Spider) skipTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, sub := range s.skipTitles {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// shouldCrawl checks if a URL should be crawled based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/wiki/Help:*" matches "/wiki/Help:Contents"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Patterns without a slash are also tried against the last segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
