package research

import (
	"context"
	"fmt"

	"github.com/mikeboe/research-assistant/pkg/search"
)

// Step runs one search round against the provider and merges new findings
// into the state. The iteration counter advances exactly once per call,
// whether or not anything new was found, so the gate's bound holds even
// against a provider that only ever returns duplicates.
type Step struct {
	provider search.Provider
	scorer   *Scorer
	refiner  QueryRefiner
}

func NewStep(provider search.Provider, scorer *Scorer, refiner QueryRefiner) *Step {
	return &Step{provider: provider, scorer: scorer, refiner: refiner}
}

// Run mutates state in place. A transport error from the provider wraps
// ErrSearchUnavailable; an empty result set is a normal outcome.
func (s *Step) Run(ctx context.Context, state *ResearchState) error {
	state.Iteration++

	query := state.Query
	if s.refiner != nil {
		if refined := s.refiner(state); refined != "" {
			query = refined
		}
	}

	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	for _, r := range results {
		if r.URL == "" || state.SeenURLs[r.URL] {
			continue
		}
		f := Finding{
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Snippet,
		}
		f.QualityScore = s.scorer.Score(f)
		f.QualityTier = s.scorer.Tier(f.URL)

		state.SeenURLs[f.URL] = true
		state.Findings = append(state.Findings, f)
	}
	return nil
}
