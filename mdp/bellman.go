package mdp

import "math"

func (o Objective) worst() float64 {
	if o == Minimize {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

func (o Objective) better(a, b float64) bool {
	if o == Minimize {
		return a < b
	}
	return a > b
}

// argopt picks the first candidate whose value is within tieTolerance of the optimum.
func argopt(obj Objective, values []float64) int {
	best := obj.worst()
	for _, v := range values {
		if obj.better(v, best) {
			best = v
		}
	}
	for i, v := range values {
		if math.Abs(v-best) <= tieTolerance || v == best {
			return i
		}
	}
	return 0
}

// lookahead is the expected next-state value of taking a in s.
func lookahead(m *MDP, w ValueTable, s State, a Action) (float64, error) {
	pdf, err := m.transition(s, a)
	if err != nil {
		return 0, err
	}
	return pdf.Expect(w.Estimate), nil
}

// greedy returns the best action at s against w and its expected next value.
func greedy(m *MDP, w ValueTable, s State) (Action, float64, error) {
	actions, err := m.feasible(s)
	if err != nil {
		return NoAction, 0, err
	}
	values := make([]float64, len(actions))
	for i, a := range actions {
		if values[i], err = lookahead(m, w, s, a); err != nil {
			return NoAction, 0, err
		}
	}
	i := argopt(m.Objective, values)
	return actions[i], values[i], nil
}

// GreedyPolicy extracts the one-step lookahead policy for a value table.
func GreedyPolicy(m *MDP, w ValueTable) (PolicyTable, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	policy := NewPolicyTable(m.NumStates)
	for s := State(0); int(s) < m.NumStates; s++ {
		if m.IsTerminal(s) {
			continue
		}
		a, _, err := greedy(m, w, s)
		if err != nil {
			return nil, err
		}
		policy[s] = a
	}
	return policy, nil
}
