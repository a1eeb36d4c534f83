package research

import "testing"

func TestGateEvaluate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinFindings = 3
	cfg.MaxIterations = 3
	g := NewGate(cfg)

	tests := []struct {
		name      string
		findings  int
		iteration int
		want      Decision
	}{
		{"No findings, first iteration", 0, 1, DecisionContinue},
		{"Below both thresholds", 2, 2, DecisionContinue},
		{"Exactly enough findings", 3, 1, DecisionProceed},
		{"More than enough findings", 5, 1, DecisionProceed},
		{"Enough findings at last iteration", 3, 3, DecisionProceed},
		{"Exhausted without evidence", 0, 3, DecisionAbort},
		{"Exhausted with too little", 2, 3, DecisionAbort},
		{"Past the bound", 1, 4, DecisionAbort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &ResearchState{
				Findings:  make([]Finding, tt.findings),
				Iteration: tt.iteration,
			}
			if got := g.Evaluate(state); got != tt.want {
				t.Errorf("Evaluate(findings=%d, iteration=%d) = %q, want %q",
					tt.findings, tt.iteration, got, tt.want)
			}
		})
	}
}

func TestGateTermination(t *testing.T) {
	// Whatever the inputs, repeated evaluation with an advancing
	// iteration counter must reach a terminal decision within the bound.
	g := NewGate(Config{MinFindings: 100, MaxIterations: 3})

	state := &ResearchState{}
	for i := 1; i <= 3; i++ {
		state.Iteration = i
		d := g.Evaluate(state)
		if i < 3 && d != DecisionContinue {
			t.Fatalf("iteration %d: got %q, want continue", i, d)
		}
		if i == 3 && d != DecisionAbort {
			t.Fatalf("iteration %d: got %q, want abort", i, d)
		}
	}
}
