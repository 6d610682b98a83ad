package crawler

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"
)

var (
	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")

	// ErrMissingHost is returned for URLs without a host.
	ErrMissingHost = errors.New("url has no host")
)

// Canonicalize returns the canonical form of an absolute URL.
//
// The canonical form is the deduplication key for the whole crawl:
//   - only http and https are accepted
//   - scheme and host are lowercased and default ports dropped
//   - userinfo, query and fragment are removed
//   - dot segments are resolved, an empty path becomes "/" and a trailing
//     slash is dropped from any other path
func Canonicalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	return canonicalURL(u)
}

func canonicalURL(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrMissingHost
	}
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	out := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   canonicalPath(u.Path),
	}
	return out.String(), nil
}

func canonicalPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	// path.Clean resolves "." and ".." and drops the trailing slash.
	return path.Clean(p)
}

// resolveLink resolves href against base and canonicalizes the result.
// Non-navigational hrefs are rejected.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	link, err := canonicalURL(base.ResolveReference(ref))
	if err != nil {
		return "", false
	}
	return link, true
}
