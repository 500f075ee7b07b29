package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tara-vision/nexus/internal/action"
	"golang.org/x/net/html"
)

const (
	defaultSearchURL   = "https://html.duckduckgo.com/html/"
	defaultSearchLimit = 3
	searchUserAgent    = "Mozilla/5.0 (compatible; nexus/1.0)"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title       string
	Description string
	Link        string
}

// Searcher queries DuckDuckGo's HTML endpoint.
type Searcher struct {
	BaseURL    string
	MaxResults int
	HTTPClient *http.Client
}

// NewSearcher creates a searcher with default endpoint and limits.
func NewSearcher() *Searcher {
	return &Searcher{
		BaseURL:    defaultSearchURL,
		MaxResults: defaultSearchLimit,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search is the search tool handler.
func (tb *Toolbox) Search(ctx context.Context, call *action.ToolCall) (string, error) {
	query := strings.TrimSpace(call.Arg("query"))
	if query == "" {
		return "", fmt.Errorf("query argument is required")
	}

	results, err := tb.Searcher.Query(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error Search: %v", err), nil
	}
	return FormatResults(results), nil
}

// FormatResults renders search hits as plain text for the model.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results."
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("TITLE: %s\nDESC: %s\nLINK: %s", r.Title, r.Description, r.Link))
	}
	return "SEARCH RESULTS:\n\n" + strings.Join(parts, "\n\n")
}

// Query fetches and parses the top results for query.
func (s *Searcher) Query(ctx context.Context, query string) ([]SearchResult, error) {
	base := s.BaseURL
	if base == "" {
		base = defaultSearchURL
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", searchUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	limit := s.MaxResults
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return extractResults(doc, limit), nil
}

// extractResults walks the result page in document order: each result__a
// link opens a new hit and the following result__snippet describes it.
func extractResults(doc *html.Node, limit int) []SearchResult {
	var results []SearchResult
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				if len(results) == limit {
					return false
				}
				results = append(results, SearchResult{
					Title: collapse(textContent(n)),
					Link:  resolveLink(attr(n, "href")),
				})
				return true
			case hasClass(n, "result__snippet") && len(results) > 0:
				last := &results[len(results)-1]
				if last.Description == "" {
					last.Description = collapse(textContent(n))
				}
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)
	return results
}

// resolveLink unwraps DuckDuckGo's redirect links.
func resolveLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
