package research

import (
	"net/url"
	"strings"
)

// Scorer assigns a quality score to a single finding. Scoring is
// deterministic: the same URL and snippet always produce the same score.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg.normalize()}
}

const (
	scoreBase           = 0.5
	scoreDomainBoost    = 0.3
	scoreTrustPenalty   = 0.3
	scoreSnippetPenalty = 0.2
)

// Score rates a finding in [0,1]. Unknown domains stay neutral; a scorer
// never fails.
func (s *Scorer) Score(f Finding) float64 {
	score := scoreBase

	host := hostOf(f.URL)
	if matchesSuffix(host, s.cfg.AuthoritativeDomainSuffixes) {
		score += scoreDomainBoost
	} else if matchesSuffix(host, s.cfg.LowTrustDomainSuffixes) {
		score -= scoreTrustPenalty
	}

	if len(f.Snippet) < s.cfg.MinSnippetLength {
		score -= scoreSnippetPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Tier buckets a URL into "high", "medium" or "low" reliability based on
// the configured suffix sets.
func (s *Scorer) Tier(rawURL string) string {
	host := hostOf(rawURL)
	if matchesSuffix(host, s.cfg.AuthoritativeDomainSuffixes) {
		return "high"
	}
	if matchesSuffix(host, s.cfg.LowTrustDomainSuffixes) {
		return "low"
	}
	return "medium"
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		// Fall back to matching against the raw string so bare
		// hostnames still score.
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Host)
}

func matchesSuffix(host string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if suffix == "" {
			continue
		}
		s := strings.ToLower(suffix)
		if strings.HasSuffix(host, s) || strings.Contains(host, s) {
			return true
		}
	}
	return false
}
