package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DuckDuckGo scrapes the DuckDuckGo lite HTML interface. It needs no API
// key, which makes it the default provider.
type DuckDuckGo struct {
	client     *http.Client
	endpoint   string
	maxResults int
}

func NewDuckDuckGo(maxResults int) *DuckDuckGo {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &DuckDuckGo{
		client:     &http.Client{Timeout: 15 * time.Second},
		maxResults: maxResults,
	}
}

// NewDuckDuckGoWithClient uses the supplied HTTP client, mainly so tests
// can point the provider at a local server.
func NewDuckDuckGoWithClient(client *http.Client, endpoint string, maxResults int) *DuckDuckGo {
	d := NewDuckDuckGo(maxResults)
	d.client = client
	if endpoint != "" {
		d.endpoint = endpoint
	}
	return d
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search posts the query to the lite endpoint and parses the result table.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := d.endpoint
	if endpoint == "" {
		endpoint = "https://lite.duckduckgo.com/lite/"
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return d.parseLiteHTML(string(body)), nil
}

var (
	ddgLinkRe    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	ddgLinkAltRe = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	ddgSnippetRe = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
)

// parseLiteHTML extracts results from the lite page, which keeps a simple
// table layout with result links and snippet cells.
func (d *DuckDuckGo) parseLiteHTML(html string) []Result {
	locs := ddgLinkRe.FindAllStringSubmatchIndex(html, -1)
	if len(locs) == 0 {
		locs = ddgLinkAltRe.FindAllStringSubmatchIndex(html, -1)
	}

	var results []Result
	for i, loc := range locs {
		link := strings.TrimSpace(html[loc[2]:loc[3]])
		title := cleanHTML(strings.TrimSpace(html[loc[4]:loc[5]]))
		if link == "" || title == "" {
			continue
		}

		// A snippet cell belongs to the link row directly above it, so
		// only look between this link and the next one. A result without
		// a snippet cell keeps an empty snippet instead of stealing the
		// next result's.
		region := html[loc[1]:]
		if i+1 < len(locs) {
			region = html[loc[1]:locs[i+1][0]]
		}
		snippet := ""
		if m := ddgSnippetRe.FindStringSubmatch(region); m != nil {
			snippet = cleanHTML(m[1])
		}

		results = append(results, Result{Title: title, URL: link, Snippet: snippet})
		if len(results) >= d.maxResults {
			break
		}
	}
	return results
}

var (
	htmlEntities = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#x27;", "'",
		"&#39;", "'",
		"&nbsp;", " ",
	)
	innerTagRe = regexp.MustCompile(`<[^>]+>`)
)

func cleanHTML(s string) string {
	return strings.TrimSpace(innerTagRe.ReplaceAllString(htmlEntities.Replace(s), ""))
}
