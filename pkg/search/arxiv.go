package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Arxiv queries the arXiv Atom API. Useful for academic topics where
// abstracts make better snippets than web search blurbs.
type Arxiv struct {
	client     *http.Client
	baseURL    string
	maxResults int
}

func NewArxiv(maxResults int) *Arxiv {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Arxiv{
		client:     http.DefaultClient,
		baseURL:    "https://export.arxiv.org/api/query",
		maxResults: maxResults,
	}
}

func (a *Arxiv) Name() string { return "arxiv" }

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entry   []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title   string      `xml:"title"`
	Summary string      `xml:"summary"`
	Link    []arxivLink `xml:"link"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

func (a *Arxiv) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Add("search_query", query)
	params.Add("max_results", strconv.Itoa(a.maxResults))
	params.Add("start", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("arxiv returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal XML: %w", err)
	}

	var results []Result
	for _, entry := range feed.Entry {
		r := Result{
			Title:   strings.TrimSpace(entry.Title),
			Snippet: strings.TrimSpace(entry.Summary),
		}
		for _, link := range entry.Link {
			if link.Type == "application/pdf" {
				r.URL = link.Href
				break
			}
		}
		if r.URL == "" && len(entry.Link) > 0 {
			r.URL = entry.Link[0].Href
		}
		if r.Title == "" || r.URL == "" {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
