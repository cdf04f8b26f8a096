package mdp

import "fmt"

// StageSystem is a finite-horizon problem over states 0..NumStates()-1 with a
// random disturbance w drawn each stage.
type StageSystem interface {
	Horizon() int
	NumStates() int
	// Controls lists the feasible actions of state x at stage k.
	Controls(k int, x State) []Action
	Disturbance(k int) DiscretePdf[int]
	Next(k int, x State, u Action, w int) State
	StageCost(k int, x State, u Action, w int) float64
	TerminalCost(x State) float64
}

type StageResult struct {
	Values StageValues
	Policy StagePolicy
}

// BackwardInduction computes V_N = g_N and, for k = N-1 down to 0,
// V_k(x) = opt_u Σ_w P_k(w) [g_k(x,u,w) + V_{k+1}(next(x,u,w))].
// Costs are minimized unless WithObjective says otherwise.
func BackwardInduction(sys StageSystem, opts ...Option) (*StageResult, error) {
	o := newOptions(opts)
	obj := o.objectiveOr(Minimize)

	n, states := sys.Horizon(), sys.NumStates()
	if n < 0 || states <= 0 {
		return nil, fmt.Errorf("%w: horizon %d with %d states", ErrConfiguration, n, states)
	}

	values, policy := newStageTables(n+1, states)
	for x := 0; x < states; x++ {
		values[n][x] = sys.TerminalCost(State(x))
	}

	for k := n - 1; k >= 0; k-- {
		pw := sys.Disturbance(k)
		if err := pw.Check(); err != nil {
			return nil, fmt.Errorf("stage %d disturbance: %w", k, err)
		}
		for x := State(0); int(x) < states; x++ {
			controls := sys.Controls(k, x)
			if len(controls) == 0 {
				return nil, fmt.Errorf("%w: stage %d state %d", ErrNoFeasibleAction, k, x)
			}
			expected := make([]float64, len(controls))
			for i, u := range controls {
				total := 0.0
				for j := 0; j < pw.Len(); j++ {
					w, p := pw.Outcome(j)
					if p == 0 {
						continue
					}
					next := sys.Next(k, x, u, w)
					if next < 0 || int(next) >= states {
						return nil, fmt.Errorf("%w: stage %d state %d control %d reaches %d", ErrConfiguration, k, x, u, next)
					}
					total += float64(p) * (sys.StageCost(k, x, u, w) + values[k+1][next])
				}
				expected[i] = total
			}
			best := argopt(obj, expected)
			values[k][x] = expected[best]
			policy[k][x] = controls[best]
		}
		o.logger.Debug().Int("stage", k).Msg("backward induction stage")
	}
	return &StageResult{Values: values, Policy: policy}, nil
}
