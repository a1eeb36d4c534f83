package research

import (
	"context"
	"errors"
)

// Status describes where a research run is in its lifecycle.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSufficient Status = "sufficient"
	StatusAborted    Status = "aborted"
	StatusFailed     Status = "failed"
	StatusRejected   Status = "rejected"
)

// Terminal reports whether no further transitions are allowed for this status.
func (s Status) Terminal() bool {
	return s != StatusInProgress && s != ""
}

// Decision is the quality gate's verdict after a research iteration.
type Decision string

const (
	DecisionContinue Decision = "continue"
	DecisionProceed  Decision = "proceed"
	DecisionAbort    Decision = "abort"
)

var (
	// ErrSearchUnavailable signals a transport-level search failure.
	// Zero results is not a failure and never produces this error.
	ErrSearchUnavailable = errors.New("search provider unavailable")

	// ErrGenerationFailed signals that the language model call failed or
	// returned empty content. Accumulated findings survive this error.
	ErrGenerationFailed = errors.New("summary generation failed")
)

// RejectionKind classifies why a query was rejected before research started.
type RejectionKind string

const (
	RejectionEmpty     RejectionKind = "empty_query"
	RejectionTooLong   RejectionKind = "query_too_long"
	RejectionSensitive RejectionKind = "sensitive_topic"
)

// RejectionError is returned by the validator for unacceptable input.
type RejectionError struct {
	Kind    RejectionKind
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// Finding is one deduplicated search result incorporated into a run.
type Finding struct {
	URL          string  `json:"url"`
	Title        string  `json:"title"`
	Snippet      string  `json:"snippet"`
	QualityScore float64 `json:"quality_score"`
	QualityTier  string  `json:"quality_tier,omitempty"`
}

// Summary is the terminal artifact of a successful run.
type Summary struct {
	ExecutiveSummary string    `json:"executive_summary"`
	KeyInsights      []string  `json:"key_insights"`
	Sources          []Finding `json:"sources"`
}

// ResearchState is the single mutable record threaded through the control
// loop. It has exactly one writer at a time; ownership transfers serially
// along the state machine edges.
type ResearchState struct {
	Query     string          `json:"query"`
	Findings  []Finding       `json:"findings"`
	SeenURLs  map[string]bool `json:"seen_urls"`
	Iteration int             `json:"iteration"`
	Status    Status          `json:"status"`
	Summary   *Summary        `json:"summary,omitempty"`
}

// NewState creates a state for a normalized query, optionally seeded with
// findings carried over from a previous run in the same thread. Seed
// findings keep their original scores; duplicate URLs are dropped.
func NewState(query string, prior []Finding) *ResearchState {
	st := &ResearchState{
		Query:    query,
		SeenURLs: make(map[string]bool),
		Status:   StatusInProgress,
	}
	for _, f := range prior {
		if f.URL == "" || st.SeenURLs[f.URL] {
			continue
		}
		st.SeenURLs[f.URL] = true
		st.Findings = append(st.Findings, f)
	}
	return st
}

// FinalResult is what a run reports back to the caller, whatever the
// outcome. Findings are always attached, even on failure.
type FinalResult struct {
	Status          Status    `json:"status"`
	Summary         *Summary  `json:"summary,omitempty"`
	Findings        []Finding `json:"findings"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

// LanguageModel is the narrow generation interface the summarizer consumes.
// An empty response with a nil error is distinguishable from a failure.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FindingsCache is an optional read-through cache of findings from past
// runs. Lookups that fail are treated as misses.
type FindingsCache interface {
	Similar(ctx context.Context, query string, limit int) ([]Finding, error)
	Add(ctx context.Context, query string, findings []Finding) error
}
