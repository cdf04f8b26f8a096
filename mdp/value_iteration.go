package mdp

// Result is the outcome of an infinite-horizon solve. Converged is false when the
// iteration cap was hit; Values and Policy then hold the last estimate.
type Result struct {
	Values     ValueTable
	Policy     PolicyTable
	Iterations int
	Converged  bool
	// Deltas records the L-infinity value change of each value iteration sweep,
	// or the number of states whose action changed in each policy iteration step.
	Deltas []float64
}

// ValueIteration applies W_{i+1}(x) = r(x) + γ opt_a E[W_i(next)] until the sweep
// changes no state by more than epsilon.
func ValueIteration(m *MDP, opts ...Option) (*Result, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	m = o.solving(m)

	w := NewValueTable(m.NumStates)
	if !o.zeroInit {
		for s := range w {
			w[s] = m.RewardFunction.Reward(State(s))
		}
	}

	res := &Result{}
	for res.Iterations < o.maxIterations {
		next := NewValueTable(m.NumStates)
		for s := State(0); int(s) < m.NumStates; s++ {
			reward := m.RewardFunction.Reward(s)
			if m.IsTerminal(s) {
				next[s] = reward
				continue
			}
			_, best, err := greedy(m, w, s)
			if err != nil {
				return nil, err
			}
			next[s] = reward + m.RewardDiscount*best
		}

		delta := next.MaxDiff(w)
		res.Deltas = append(res.Deltas, delta)
		res.Iterations++
		w = next

		o.logger.Debug().
			Int("iteration", res.Iterations).
			Float64("delta", delta).
			Msg("value iteration sweep")

		if delta < o.epsilon {
			res.Converged = true
			break
		}
	}

	policy, err := GreedyPolicy(m, w)
	if err != nil {
		return nil, err
	}
	res.Values = w
	res.Policy = policy

	if !res.Converged {
		o.logger.Warn().
			Int("iterations", res.Iterations).
			Float64("delta", res.Deltas[len(res.Deltas)-1]).
			Msg("value iteration did not converge")
	}
	return res, nil
}
