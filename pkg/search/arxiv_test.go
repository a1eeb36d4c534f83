package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const arxivFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Is All You Need</title>
    <summary>  The dominant sequence transduction models are based on complex recurrent networks.  </summary>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <title>Paper Without PDF Link</title>
    <summary>Only has the abstract page link.</summary>
    <link href="http://arxiv.org/abs/2000.00001v1" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func newTestArxiv(srv *httptest.Server, maxResults int) *Arxiv {
	a := NewArxiv(maxResults)
	a.client = srv.Client()
	a.baseURL = srv.URL
	return a
}

func TestArxivSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(arxivFeedFixture))
	}))
	defer srv.Close()

	a := newTestArxiv(srv, 5)
	results, err := a.Search(context.Background(), "transformer architecture")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if gotQuery != "transformer architecture" {
		t.Errorf("search_query sent = %q", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].URL != "http://arxiv.org/pdf/1706.03762v7" {
		t.Errorf("URL = %q, want the PDF link preferred", results[0].URL)
	}
	if results[0].Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", results[0].Title)
	}
	if results[0].Snippet != "The dominant sequence transduction models are based on complex recurrent networks." {
		t.Errorf("Snippet = %q, want trimmed abstract", results[0].Snippet)
	}

	// Falls back to the first link when no PDF is listed.
	if results[1].URL != "http://arxiv.org/abs/2000.00001v1" {
		t.Errorf("URL = %q, want the abstract link fallback", results[1].URL)
	}
}

func TestArxivSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := newTestArxiv(srv, 5)
	if _, err := a.Search(context.Background(), "anything"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantName string
		wantErr  bool
	}{
		{"Default", "", "duckduckgo", false},
		{"DuckDuckGo", "duckduckgo", "duckduckgo", false},
		{"Arxiv", "arxiv", "arxiv", false},
		{"Unknown", "altavista", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Select(tt.provider, 5)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Select(%q) error: %v", tt.provider, err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}
