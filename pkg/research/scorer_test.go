package research

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testScorer() *Scorer {
	cfg := DefaultConfig()
	cfg.LowTrustDomainSuffixes = []string{"contentfarm.example"}
	return NewScorer(cfg)
}

func TestScore(t *testing.T) {
	s := testScorer()
	longSnippet := strings.Repeat("evidence ", 10)

	tests := []struct {
		name    string
		url     string
		snippet string
		want    float64
	}{
		{"Authoritative with substance", "https://www.nature.com/articles/x", longSnippet, 0.8},
		{"Gov domain", "https://data.census.gov/table", longSnippet, 0.8},
		{"Unknown domain neutral", "https://example.com/post", longSnippet, 0.5},
		{"Unknown domain short snippet", "https://example.com/post", "thin", 0.3},
		{"Authoritative short snippet", "https://arxiv.org/abs/1234", "thin", 0.6},
		{"Low trust", "https://blog.contentfarm.example/page", longSnippet, 0.2},
		{"Low trust short snippet clamps", "https://blog.contentfarm.example/page", "thin", 0.0},
		{"Bare hostname still matches", "nature.com", longSnippet, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(Finding{URL: tt.url, Snippet: tt.snippet})
			if !almostEqual(got, tt.want) {
				t.Errorf("Score(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := testScorer()
	f := Finding{URL: "https://example.com/a", Snippet: "some short snippet"}

	first := s.Score(f)
	for i := 0; i < 10; i++ {
		if got := s.Score(f); got != first {
			t.Fatalf("score changed between calls: %v then %v", first, got)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	s := testScorer()
	urls := []string{
		"https://www.nature.com/a",
		"https://example.com/b",
		"https://contentfarm.example/c",
		"not a url at all",
		"",
	}
	for _, u := range urls {
		for _, snippet := range []string{"", strings.Repeat("x", 200)} {
			got := s.Score(Finding{URL: u, Snippet: snippet})
			if got < 0 || got > 1 {
				t.Errorf("Score(%q) = %v, out of [0,1]", u, got)
			}
		}
	}
}

func TestTier(t *testing.T) {
	s := testScorer()

	tests := []struct {
		url  string
		want string
	}{
		{"https://www.nih.gov/page", "high"},
		{"https://cs.stanford.edu/paper", "high"},
		{"https://arxiv.org/abs/2401.1", "high"},
		{"https://example.com/post", "medium"},
		{"https://contentfarm.example/x", "low"},
	}

	for _, tt := range tests {
		if got := s.Tier(tt.url); got != tt.want {
			t.Errorf("Tier(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
