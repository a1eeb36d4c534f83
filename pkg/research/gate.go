package research

// Gate decides whether accumulated findings are sufficient, another
// iteration is warranted, or the run must stop. It is the only place the
// iteration bound is enforced.
type Gate struct {
	cfg Config
}

func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg.normalize()}
}

// Evaluate is pure. Equality at either threshold favors proceeding over
// looping, which guarantees termination within MaxIterations steps.
func (g *Gate) Evaluate(state *ResearchState) Decision {
	if len(state.Findings) >= g.cfg.MinFindings {
		return DecisionProceed
	}
	if state.Iteration >= g.cfg.MaxIterations {
		return DecisionAbort
	}
	return DecisionContinue
}
