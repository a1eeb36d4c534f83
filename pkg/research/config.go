package research

// QueryRefiner optionally rewrites the search query between iterations,
// e.g. to chase unresolved sub-topics. The default repeats the original
// query unchanged.
type QueryRefiner func(state *ResearchState) string

// Config holds the control-loop thresholds and scoring policy. The zero
// value is unusable; call DefaultConfig and override fields as needed.
type Config struct {
	MinFindings      int
	MaxIterations    int
	MaxQueryLength   int
	MinSnippetLength int

	SensitiveTopicPatterns      []string
	AuthoritativeDomainSuffixes []string
	LowTrustDomainSuffixes      []string

	Refiner QueryRefiner
}

// DefaultConfig returns the documented defaults. Absence of any external
// configuration must never crash a run, so every consumer goes through
// normalize() before use.
func DefaultConfig() Config {
	return Config{
		MinFindings:      3,
		MaxIterations:    3,
		MaxQueryLength:   500,
		MinSnippetLength: 40,
		SensitiveTopicPatterns: []string{
			"how to make weapons",
			"how to hack",
			"illegal drugs",
			"how to harm",
			"exploit vulnerabilities",
		},
		AuthoritativeDomainSuffixes: []string{
			".gov", ".edu", "nature.com", "science.org",
			"reuters.com", "apnews.com", "bbc.com",
			"nytimes.com", "wsj.com", "economist.com",
			"arxiv.org", "ncbi.nlm.nih.gov",
		},
		LowTrustDomainSuffixes: []string{},
	}
}

// normalize fills zero-valued thresholds with defaults so a partially
// populated Config behaves sanely.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MinFindings <= 0 {
		c.MinFindings = def.MinFindings
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = def.MaxIterations
	}
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = def.MaxQueryLength
	}
	if c.MinSnippetLength <= 0 {
		c.MinSnippetLength = def.MinSnippetLength
	}
	if c.SensitiveTopicPatterns == nil {
		c.SensitiveTopicPatterns = def.SensitiveTopicPatterns
	}
	if c.AuthoritativeDomainSuffixes == nil {
		c.AuthoritativeDomainSuffixes = def.AuthoritativeDomainSuffixes
	}
	return c
}
