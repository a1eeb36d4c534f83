package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const liteHTMLFixture = `
<html><body><table>
<tr><td>1.</td><td><a rel="nofollow" href="https://www.nature.com/articles/x" class='result-link'>Fusion breakthrough &amp; what it means</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Scientists achieved net energy gain in a fusion reaction for the first time.</td></tr>
<tr><td>2.</td><td><a rel="nofollow" href="https://example.com/blog" class='result-link'>A blog post</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Some <b>casual</b> commentary.</td></tr>
<tr><td>3.</td><td><a rel="nofollow" href="https://example.org/more" class='result-link'>Third result</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>More text here.</td></tr>
</table></body></html>`

func TestParseLiteHTML(t *testing.T) {
	d := NewDuckDuckGo(5)
	results := d.parseLiteHTML(liteHTMLFixture)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	first := results[0]
	if first.URL != "https://www.nature.com/articles/x" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Title != "Fusion breakthrough & what it means" {
		t.Errorf("Title = %q, want entity decoded", first.Title)
	}
	if first.Snippet != "Scientists achieved net energy gain in a fusion reaction for the first time." {
		t.Errorf("Snippet = %q", first.Snippet)
	}

	if results[1].Snippet != "Some casual commentary." {
		t.Errorf("Snippet = %q, want inner tags stripped", results[1].Snippet)
	}
}

func TestParseLiteHTMLMissingSnippet(t *testing.T) {
	// The second result has no snippet cell; the third result's snippet
	// must not shift onto it.
	page := `
<html><body><table>
<tr><td>1.</td><td><a rel="nofollow" href="https://www.nature.com/articles/x" class='result-link'>First</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Snippet one.</td></tr>
<tr><td>2.</td><td><a rel="nofollow" href="https://example.com/blog" class='result-link'>Second</a></td></tr>
<tr><td>3.</td><td><a rel="nofollow" href="https://example.org/more" class='result-link'>Third</a></td></tr>
<tr><td>&nbsp;</td><td class='result-snippet'>Snippet three.</td></tr>
</table></body></html>`

	d := NewDuckDuckGo(5)
	results := d.parseLiteHTML(page)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Snippet != "Snippet one." {
		t.Errorf("first snippet = %q", results[0].Snippet)
	}
	if results[1].Snippet != "" {
		t.Errorf("second snippet = %q, want empty", results[1].Snippet)
	}
	if results[2].Snippet != "Snippet three." {
		t.Errorf("third snippet = %q", results[2].Snippet)
	}
}

func TestParseLiteHTMLRespectsMaxResults(t *testing.T) {
	d := NewDuckDuckGo(2)
	results := d.parseLiteHTML(liteHTMLFixture)
	if len(results) != 2 {
		t.Errorf("got %d results, want max 2", len(results))
	}
}

func TestParseLiteHTMLEmptyPage(t *testing.T) {
	d := NewDuckDuckGo(5)
	if results := d.parseLiteHTML("<html><body>No results.</body></html>"); len(results) != 0 {
		t.Errorf("got %d results from empty page, want 0", len(results))
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			gotQuery = r.PostForm.Get("q")
		}
		w.Write([]byte(liteHTMLFixture))
	}))
	defer srv.Close()

	d := NewDuckDuckGoWithClient(srv.Client(), srv.URL, 5)
	results, err := d.Search(context.Background(), "fusion energy")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if gotQuery != "fusion energy" {
		t.Errorf("query sent = %q", gotQuery)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestDuckDuckGoSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDuckDuckGoWithClient(srv.Client(), srv.URL, 5)
	if _, err := d.Search(context.Background(), "anything"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
