package research

import (
	"context"
	"testing"

	"github.com/mikeboe/research-assistant/pkg/search"
)

func fullRound(n int) []search.Result {
	results := make([]search.Result, n)
	for i := range results {
		results[i] = search.Result{
			Title:   "Result",
			URL:     "https://example.com/" + string(rune('a'+i)),
			Snippet: "a finding snippet long enough to avoid the brevity penalty",
		}
	}
	return results
}

func TestEngineRunSuccess(t *testing.T) {
	p := &fakeProvider{rounds: [][]search.Result{fullRound(3)}}
	model := &fakeModel{response: sectionedResponse}
	e := NewEngine(DefaultConfig(), p, model, nil)

	result := e.Run(context.Background(), "solid-state batteries", nil)

	if result.Status != StatusSufficient {
		t.Fatalf("status = %q, want sufficient", result.Status)
	}
	if result.Summary == nil {
		t.Fatal("summary missing on success")
	}
	if len(result.Findings) != 3 {
		t.Errorf("got %d findings, want 3", len(result.Findings))
	}
	if len(result.Summary.Sources) != 3 {
		t.Errorf("got %d sources, want 3", len(result.Summary.Sources))
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1", p.calls)
	}
}

func TestEngineRunAccumulatesAcrossIterations(t *testing.T) {
	// One new finding per round; the third round reaches the threshold.
	p := &fakeProvider{rounds: [][]search.Result{
		fullRound(1),
		fullRound(2),
		fullRound(3),
	}}
	model := &fakeModel{response: sectionedResponse}
	e := NewEngine(DefaultConfig(), p, model, nil)

	result := e.Run(context.Background(), "some topic", nil)

	if result.Status != StatusSufficient {
		t.Fatalf("status = %q, want sufficient", result.Status)
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want 3", p.calls)
	}
	if len(result.Findings) != 3 {
		t.Errorf("got %d findings, want 3", len(result.Findings))
	}
}

func TestEngineRunAbortsOnInsufficientEvidence(t *testing.T) {
	p := &fakeProvider{rounds: [][]search.Result{fullRound(2)}}
	model := &fakeModel{response: sectionedResponse}
	e := NewEngine(DefaultConfig(), p, model, nil)

	result := e.Run(context.Background(), "obscure topic", nil)

	if result.Status != StatusAborted {
		t.Fatalf("status = %q, want aborted", result.Status)
	}
	// What little was found is still reported.
	if len(result.Findings) != 2 {
		t.Errorf("got %d findings, want 2", len(result.Findings))
	}
	if result.Summary != nil {
		t.Error("aborted run must not carry a summary")
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want MaxIterations", p.calls)
	}
	if model.calls != 0 {
		t.Error("model must not be called on abort")
	}
}

func TestEngineRunRejectsQuery(t *testing.T) {
	p := &fakeProvider{}
	e := NewEngine(DefaultConfig(), p, &fakeModel{}, nil)

	tests := []string{"", "   ", "how to hack a server"}
	for _, q := range tests {
		result := e.Run(context.Background(), q, nil)
		if result.Status != StatusRejected {
			t.Errorf("Run(%q) status = %q, want rejected", q, result.Status)
		}
		if result.RejectionReason == "" {
			t.Errorf("Run(%q) has no rejection reason", q)
		}
	}
	if p.calls != 0 {
		t.Error("no search may run for a rejected query")
	}
}

func TestEngineRunSearchFailure(t *testing.T) {
	p := &fakeProvider{err: errBoom}
	e := NewEngine(DefaultConfig(), p, &fakeModel{}, nil)

	result := e.Run(context.Background(), "a topic", nil)
	if result.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", result.Status)
	}
}

func TestEngineRunPreservesFindingsOnGenerationFailure(t *testing.T) {
	p := &fakeProvider{rounds: [][]search.Result{fullRound(3)}}
	model := &fakeModel{err: errBoom}
	e := NewEngine(DefaultConfig(), p, model, nil)

	result := e.Run(context.Background(), "a topic", nil)

	if result.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", result.Status)
	}
	if len(result.Findings) != 3 {
		t.Errorf("got %d findings, want all 3 preserved", len(result.Findings))
	}
	if result.Summary != nil {
		t.Error("failed run must not carry a summary")
	}
}

func TestEngineRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakeProvider{rounds: [][]search.Result{fullRound(3)}}
	e := NewEngine(DefaultConfig(), p, &fakeModel{response: sectionedResponse}, nil)

	result := e.Run(ctx, "a topic", nil)
	if result.Status != StatusFailed {
		t.Fatalf("status = %q, want failed on cancellation", result.Status)
	}
	if p.calls != 0 {
		t.Error("cancelled run must stop at the transition boundary, before searching")
	}
}

func TestEngineRunSeedsPriorFindings(t *testing.T) {
	prior := []Finding{
		{URL: "https://example.com/p1", Title: "P1", QualityScore: 0.5},
		{URL: "https://example.com/p2", Title: "P2", QualityScore: 0.8},
		{URL: "https://example.com/p3", Title: "P3", QualityScore: 0.6},
	}
	// The provider returns nothing new; the prior findings alone satisfy
	// the gate after the mandatory first search round.
	p := &fakeProvider{}
	e := NewEngine(DefaultConfig(), p, &fakeModel{response: sectionedResponse}, nil)

	result := e.Run(context.Background(), "follow-up question", prior)

	if result.Status != StatusSufficient {
		t.Fatalf("status = %q, want sufficient", result.Status)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", p.calls)
	}
	if len(result.Findings) != 3 {
		t.Errorf("got %d findings, want the 3 carried over", len(result.Findings))
	}
}

func TestEngineRunUsesCache(t *testing.T) {
	cached := []Finding{
		{URL: "https://example.com/c1", QualityScore: 0.7},
		{URL: "https://example.com/a", QualityScore: 0.6}, // duplicates a search result
	}
	cache := &fakeCache{similar: cached}
	p := &fakeProvider{rounds: [][]search.Result{fullRound(2)}}
	e := NewEngine(DefaultConfig(), p, &fakeModel{response: sectionedResponse}, cache)

	result := e.Run(context.Background(), "cached topic", nil)

	if result.Status != StatusSufficient {
		t.Fatalf("status = %q, want sufficient", result.Status)
	}
	// 2 seeded + 2 searched, minus the URL collision.
	if len(result.Findings) != 3 {
		t.Errorf("got %d findings, want 3", len(result.Findings))
	}
	if len(cache.added) == 0 {
		t.Error("successful run must store its findings back in the cache")
	}
	if cache.addedQuery != "cached topic" {
		t.Errorf("cache keyed by %q, want the run query", cache.addedQuery)
	}
}

func TestEngineRunCacheErrorsDegrade(t *testing.T) {
	cache := &fakeCache{similarErr: errBoom, addErr: errBoom}
	p := &fakeProvider{rounds: [][]search.Result{fullRound(3)}}
	e := NewEngine(DefaultConfig(), p, &fakeModel{response: sectionedResponse}, cache)

	result := e.Run(context.Background(), "a topic", nil)
	if result.Status != StatusSufficient {
		t.Fatalf("cache failure must not fail the run, got %q", result.Status)
	}
}

func TestEngineStateUpdates(t *testing.T) {
	p := &fakeProvider{rounds: [][]search.Result{fullRound(3)}}
	e := NewEngine(DefaultConfig(), p, &fakeModel{response: sectionedResponse}, nil)

	var snapshots []ResearchState
	e.OnStateUpdate = func(state ResearchState) {
		snapshots = append(snapshots, state)
	}

	_ = e.Run(context.Background(), "a topic", nil)

	if len(snapshots) < 3 {
		t.Fatalf("got %d state updates, want at least initial, post-step and terminal", len(snapshots))
	}
	last := snapshots[len(snapshots)-1]
	if last.Status != StatusSufficient {
		t.Errorf("last snapshot status = %q, want sufficient", last.Status)
	}
	if last.Summary == nil {
		t.Error("terminal snapshot missing summary")
	}
}
