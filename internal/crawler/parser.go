package crawler

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

// invisibleElements never contribute to a page's text.
const invisibleElements = "script, style, noscript, template"

// boilerplateElements hold navigation links that are not followed.
const boilerplateElements = "nav, header, footer"

// Parser extracts the parts of an HTML page the index needs.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL

	// text strips all markup.
	text *bluemonday.Policy
}

// ParseResult is what a single parse of a page yields.
type ParseResult struct {
	// Title is the trimmed text of the first <title> element.
	Title string

	// Text is the visible text with whitespace collapsed to single spaces.
	Text string

	// Links are the canonical URLs of content anchors, in document order,
	// without duplicates. They are not filtered by domain.
	Links []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return newParser(u), nil
}

func newParser(base *url.URL) *Parser {
	return &Parser{
		baseURL: base,
		text:    bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true),
	}
}

// Parse parses HTML content and extracts title, text and links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	root, err := xhtml.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	result := &ParseResult{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Links: p.extractLinks(doc),
	}

	text, err := p.extractText(doc)
	if err != nil {
		return nil, err
	}
	result.Text = text

	return result, nil
}

// extractLinks collects anchors from <main> when the page has one, or from
// the whole document otherwise, skipping navigation regions.
func (p *Parser) extractLinks(doc *goquery.Document) []string {
	scope := doc.Selection
	if main := doc.Find("main").First(); main.Length() > 0 {
		scope = main
	}

	seen := make(map[string]struct{})
	links := make([]string, 0)
	scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if a.ParentsFiltered(boilerplateElements).Length() > 0 {
			return
		}
		href, _ := a.Attr("href")
		link, ok := resolveLink(p.baseURL, href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

// extractText removes invisible elements from doc and returns its text.
// It mutates doc, so links must be extracted first.
func (p *Parser) extractText(doc *goquery.Document) (string, error) {
	doc.Find(invisibleElements).Remove()

	markup, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	// The strict policy escapes the text it keeps.
	text := html.UnescapeString(p.text.Sanitize(markup))
	return strings.Join(strings.Fields(text), " "), nil
}
