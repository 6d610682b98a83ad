package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// maxRobotsSize caps how much of a robots.txt file is read.
const maxRobotsSize = 512 * 1024

// RobotsCache fetches robots.txt once per scheme and host and answers
// whether a URL may be crawled.
//
// A robots.txt that cannot be fetched, returns a non-200 status, or cannot
// be parsed allows everything.
type RobotsCache struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	groups map[string]*robotstxt.Group // nil group: allow all
}

// NewRobotsCache creates an empty cache.
func NewRobotsCache(client *http.Client, userAgent string, timeout time.Duration, logger *slog.Logger) *RobotsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsCache{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether the cache's user agent may fetch u.
func (r *RobotsCache) Allowed(ctx context.Context, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	group, ok := r.groups[key]
	r.mu.Unlock()

	if !ok {
		group = r.fetch(ctx, key)
		r.mu.Lock()
		r.groups[key] = group
		r.mu.Unlock()
	}

	if group == nil {
		return true
	}
	return group.Test(u.EscapedPath())
}

// Cached reports whether robots.txt for u's origin was already fetched.
func (r *RobotsCache) Cached(u *url.URL) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.groups[u.Scheme+"://"+u.Host]
	return ok
}

// Len returns the number of hosts cached.
func (r *RobotsCache) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

func (r *RobotsCache) fetch(ctx context.Context, origin string) *robotstxt.Group {
	robotsURL := origin + "/robots.txt"

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("robots.txt unavailable, allowing all", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("robots.txt not served, allowing all", "url", robotsURL, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		r.logger.Debug("robots.txt unparsable, allowing all", "url", robotsURL, "error", err)
		return nil
	}
	return data.FindGroup(r.userAgent)
}
