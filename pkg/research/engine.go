package research

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mikeboe/research-assistant/pkg/search"
)

// Phase names the engine's position in the control flow. The set is
// closed: every transition below is explicit, so the iteration bound and
// the failure paths stay auditable.
type Phase string

const (
	PhaseStart       Phase = "start"
	PhaseValidating  Phase = "validating"
	PhaseResearching Phase = "researching"
	PhaseGating      Phase = "gating"
	PhaseSummarizing Phase = "summarizing"
	PhaseDone        Phase = "done"
)

// Engine wires the validator, research step, quality gate and summarizer
// into the control loop. One Engine may serve many runs; each run owns an
// independent ResearchState and executes strictly sequentially.
type Engine struct {
	Config     Config
	Logger     *slog.Logger
	validator  *Validator
	step       *Step
	gate       *Gate
	summarizer *Summarizer
	cache      FindingsCache

	// OnStateUpdate, when set, is called with a snapshot of the state
	// after every phase transition. The server uses it to persist run
	// progress.
	OnStateUpdate func(state ResearchState)
}

// NewEngine builds an engine from its collaborators. cache may be nil.
func NewEngine(cfg Config, provider search.Provider, model LanguageModel, cache FindingsCache) *Engine {
	cfg = cfg.normalize()
	scorer := NewScorer(cfg)
	return &Engine{
		Config:     cfg,
		Logger:     slog.Default(),
		validator:  NewValidator(cfg),
		step:       NewStep(provider, scorer, cfg.Refiner),
		gate:       NewGate(cfg),
		summarizer: NewSummarizer(model),
		cache:      cache,
	}
}

// Run executes one complete research run. Every terminal outcome is a
// structured FinalResult; no fault from either external call escapes
// unclassified, and accumulated findings are always attached.
func (e *Engine) Run(ctx context.Context, rawQuery string, priorFindings []Finding) FinalResult {
	// START -> VALIDATING
	e.Logger.Debug("phase transition", "phase", PhaseValidating)
	query, err := e.validator.Validate(rawQuery)
	if err != nil {
		var rej *RejectionError
		reason := err.Error()
		if errors.As(err, &rej) {
			e.Logger.Warn("query rejected", "kind", rej.Kind)
			reason = rej.Message
		}
		return FinalResult{Status: StatusRejected, RejectionReason: reason}
	}

	state := NewState(query, priorFindings)
	e.seedFromCache(ctx, state)
	e.notify(state)

	e.Logger.Info("starting research run", "query", query, "seed_findings", len(state.Findings))

	for {
		// (VALIDATING|GATING) -> RESEARCHING
		if err := e.transition(ctx, PhaseResearching); err != nil {
			return e.fail(state, "run cancelled", err)
		}
		if err := e.step.Run(ctx, state); err != nil {
			return e.fail(state, "search failed", err)
		}
		e.Logger.Info("research step complete",
			"iteration", state.Iteration, "findings", len(state.Findings))
		e.notify(state)

		// RESEARCHING -> GATING
		if err := e.transition(ctx, PhaseGating); err != nil {
			return e.fail(state, "run cancelled", err)
		}
		decision := e.gate.Evaluate(state)
		if decision == DecisionContinue {
			continue
		}
		if decision == DecisionAbort {
			e.Logger.Warn("insufficient evidence, aborting",
				"iterations", state.Iteration, "findings", len(state.Findings))
			state.Status = StatusAborted
			e.notify(state)
			return FinalResult{Status: StatusAborted, Findings: state.Findings}
		}
		break
	}

	// GATING -> SUMMARIZING
	if err := e.transition(ctx, PhaseSummarizing); err != nil {
		return e.fail(state, "run cancelled", err)
	}
	summary, err := e.summarizer.Summarize(ctx, state)
	if err != nil {
		return e.fail(state, "summarization failed", err)
	}

	// SUMMARIZING -> DONE
	state.Summary = summary
	state.Status = StatusSufficient
	e.notify(state)
	e.storeInCache(ctx, state)
	e.Logger.Info("research run complete", "phase", PhaseDone,
		"findings", len(state.Findings), "insights", len(summary.KeyInsights))

	return FinalResult{
		Status:   StatusSufficient,
		Summary:  summary,
		Findings: state.Findings,
	}
}

// transition is the cancellation checkpoint between phases. Cancellation
// is only observed here, never mid-call.
func (e *Engine) transition(ctx context.Context, next Phase) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.Logger.Debug("phase transition", "phase", next)
	return nil
}

func (e *Engine) fail(state *ResearchState, msg string, err error) FinalResult {
	e.Logger.Error(msg, "error", err, "findings", len(state.Findings))
	state.Status = StatusFailed
	e.notify(state)
	return FinalResult{Status: StatusFailed, Findings: state.Findings}
}

func (e *Engine) notify(state *ResearchState) {
	if e.OnStateUpdate != nil {
		e.OnStateUpdate(*state)
	}
}

// seedFromCache pulls similar findings from past runs before the first
// search round. Cache errors degrade to a miss.
func (e *Engine) seedFromCache(ctx context.Context, state *ResearchState) {
	if e.cache == nil {
		return
	}
	cached, err := e.cache.Similar(ctx, state.Query, e.Config.MinFindings)
	if err != nil {
		e.Logger.Warn("findings cache lookup failed", "error", err)
		return
	}
	for _, f := range cached {
		if f.URL == "" || state.SeenURLs[f.URL] {
			continue
		}
		state.SeenURLs[f.URL] = true
		state.Findings = append(state.Findings, f)
	}
	if len(cached) > 0 {
		e.Logger.Info("seeded findings from cache", "count", len(cached))
	}
}

func (e *Engine) storeInCache(ctx context.Context, state *ResearchState) {
	if e.cache == nil || len(state.Findings) == 0 {
		return
	}
	if err := e.cache.Add(ctx, state.Query, state.Findings); err != nil {
		e.Logger.Warn("failed to cache findings", "error", err)
	}
}
