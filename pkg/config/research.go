package config

import "github.com/mikeboe/research-assistant/pkg/research"

// ResearchConfig maps the environment configuration onto the engine's
// config struct. Nil lists fall through to the engine's compiled-in
// defaults.
func (c *Config) ResearchConfig() research.Config {
	return research.Config{
		MinFindings:                 c.MinFindings,
		MaxIterations:               c.MaxIterations,
		MaxQueryLength:              c.MaxQueryLength,
		MinSnippetLength:            c.MinSnippetLength,
		SensitiveTopicPatterns:      c.SensitiveTopicPatterns,
		AuthoritativeDomainSuffixes: c.AuthoritativeDomainSuffixes,
		LowTrustDomainSuffixes:      c.LowTrustDomainSuffixes,
	}
}
