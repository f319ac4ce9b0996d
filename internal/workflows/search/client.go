// Package search implements the search:* built-in workflows (§4.K):
// search:web. Grounded on the teacher's internal/tools/rss_feed.go (an
// HTTP-client-with-timeout, structured-result shape) for the live-API
// adapter point; the default Client is a fake in-memory index so tests
// never perform network calls. The live adapter parses a results page
// with golang.org/x/net/html rather than assuming a JSON API, since no
// search provider's exact response shape is specified.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Client is the effect port a search workflow dispatches through.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// HTTPClient fetches a results page and extracts result links from its
// markup. BaseURL and APIKey are supplied by configuration.
type HTTPClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Timeout time.Duration
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{BaseURL: baseURL, APIKey: apiKey, HTTP: http.DefaultClient, Timeout: 15 * time.Second}
}

func (c *HTTPClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.BaseURL+"?q="+query, nil)
	if err != nil {
		return nil, err
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	results, err := extractResultLinks(resp.Body)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

// extractResultLinks walks an HTML document and collects every anchor tag
// whose href looks like an absolute result link, using its text content as
// the title. There is no structured results container to key off without
// knowing the concrete provider, so this takes the documents-at-large
// approach: every external link is a candidate result.
func extractResultLinks(body io.Reader) ([]Result, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("search: parse results page: %w", err)
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attrValue(n, "href")
			if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
				if title := strings.TrimSpace(textContent(n)); title != "" {
					results = append(results, Result{Title: title, URL: href})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

func attrValue(n *html.Node, key string) string {
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
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// FakeClient is an in-memory Client matching on a simple substring rule,
// the default adapter and the one used in tests.
type FakeClient struct {
	Index []Result
}

func NewFakeClient(index []Result) *FakeClient {
	return &FakeClient{Index: index}
}

func (c *FakeClient) Search(_ context.Context, query string, limit int) ([]Result, error) {
	query = strings.ToLower(query)
	var out []Result
	for _, r := range c.Index {
		if strings.Contains(strings.ToLower(r.Title), query) || strings.Contains(strings.ToLower(r.Snippet), query) {
			out = append(out, r)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
