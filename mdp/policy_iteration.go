package mdp

import "fmt"

// PolicyIteration alternates exact evaluation with greedy improvement and stops
// once improvement leaves the policy unchanged.
func PolicyIteration(m *MDP, opts ...Option) (*Result, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	m = o.solving(m)

	policy, err := initialPolicy(m, o.initialPolicy)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	var values ValueTable
	for res.Iterations < o.maxIterations {
		if values, err = EvaluatePolicy(m, policy); err != nil {
			return nil, err
		}
		improved, err := GreedyPolicy(m, values)
		if err != nil {
			return nil, err
		}
		res.Iterations++

		changed := 0
		for s := range policy {
			if policy[s] != improved[s] {
				changed++
			}
		}
		res.Deltas = append(res.Deltas, float64(changed))
		o.logger.Debug().
			Int("iteration", res.Iterations).
			Int("changed", changed).
			Msg("policy improvement")

		if changed == 0 {
			res.Converged = true
			break
		}
		policy = improved
	}

	if !res.Converged {
		o.logger.Warn().Int("iterations", res.Iterations).Msg("policy iteration did not converge")
		if values, err = EvaluatePolicy(m, policy); err != nil {
			return nil, err
		}
	}
	res.Values = values
	res.Policy = policy
	return res, nil
}

func initialPolicy(m *MDP, given PolicyTable) (PolicyTable, error) {
	if given != nil {
		if len(given) != m.NumStates {
			return nil, fmt.Errorf("%w: initial policy covers %d of %d states", ErrConfiguration, len(given), m.NumStates)
		}
		return given.Clone(), nil
	}
	policy := NewPolicyTable(m.NumStates)
	for s := State(0); int(s) < m.NumStates; s++ {
		if m.IsTerminal(s) {
			continue
		}
		actions, err := m.feasible(s)
		if err != nil {
			return nil, err
		}
		policy[s] = actions[0]
	}
	return policy, nil
}
