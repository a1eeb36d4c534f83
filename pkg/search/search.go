// Package search provides the web search providers the research engine
// queries. Providers return structured results; a transport failure is an
// error, zero results is a valid empty response.
package search

import (
	"context"
	"fmt"
)

// Result is a single search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is the interface search backends implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "duckduckgo", "arxiv").
	Name() string

	// Search executes a query. It returns an empty slice, not an error,
	// when the provider is reachable but finds nothing.
	Search(ctx context.Context, query string) ([]Result, error)
}

// Select returns the provider registered under the given name.
func Select(name string, maxResults int) (Provider, error) {
	switch name {
	case "", "duckduckgo":
		return NewDuckDuckGo(maxResults), nil
	case "arxiv":
		return NewArxiv(maxResults), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", name)
	}
}
