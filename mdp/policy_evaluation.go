package mdp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// InducedChain builds the transition matrix P_π obtained by fixing the policy's
// action in every state. Terminal states are absorbing.
func InducedChain(m *MDP, policy PolicyTable) (*mat.Dense, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	if len(policy) != m.NumStates {
		return nil, fmt.Errorf("%w: policy covers %d of %d states", ErrConfiguration, len(policy), m.NumStates)
	}
	n := m.NumStates
	p := mat.NewDense(n, n, nil)
	for s := State(0); int(s) < n; s++ {
		if m.IsTerminal(s) {
			p.Set(int(s), int(s), 1)
			continue
		}
		if policy[s] == NoAction {
			return nil, fmt.Errorf("%w: state %d", ErrNoFeasibleAction, s)
		}
		pdf, err := m.transition(s, policy[s])
		if err != nil {
			return nil, err
		}
		for i := 0; i < pdf.Len(); i++ {
			next, prob := pdf.Outcome(i)
			p.Set(int(s), int(next), p.At(int(s), int(next))+float64(prob))
		}
	}
	return p, nil
}

// EvaluatePolicy solves (I − γP_π) v = r exactly. Terminal rows reduce to v(x) = r(x).
func EvaluatePolicy(m *MDP, policy PolicyTable) (ValueTable, error) {
	chain, err := InducedChain(m, policy)
	if err != nil {
		return nil, err
	}
	n := m.NumStates
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for s := 0; s < n; s++ {
		b.SetVec(s, m.RewardFunction.Reward(State(s)))
		if m.IsTerminal(State(s)) {
			a.Set(s, s, 1)
			continue
		}
		for t := 0; t < n; t++ {
			v := -m.RewardDiscount * chain.At(s, t)
			if s == t {
				v += 1
			}
			a.Set(s, t, v)
		}
	}

	var v mat.VecDense
	if err := v.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}
	values := NewValueTable(n)
	for s := range values {
		values[s] = v.AtVec(s)
	}
	return values, nil
}

// EvaluatePolicySweep performs one in-place Bellman expectation sweep of a possibly
// stochastic policy, starting from a copy of v. It returns the new table and the
// largest change.
func EvaluatePolicySweep(m *MDP, policy Policy, v ValueTable) (ValueTable, float64, error) {
	if err := m.Check(); err != nil {
		return nil, 0, err
	}
	V := v.Clone()
	if len(V) != m.NumStates {
		V = NewValueTable(m.NumStates)
	}

	var delta float64
	for s0 := State(0); int(s0) < m.NumStates; s0++ {
		v0 := V[s0]
		r := m.RewardFunction.Reward(s0)
		if m.IsTerminal(s0) {
			V[s0] = r
			delta = math.Max(math.Abs(v0-r), delta)
			continue
		}
		aPdf := policy.Act(s0)
		if aPdf.Len() == 0 {
			return nil, 0, fmt.Errorf("%w: policy %s has no action at state %d", ErrNoFeasibleAction, policy.Name(), s0)
		}
		var v1 float64
		for i := 0; i < aPdf.Len(); i++ {
			a, ap := aPdf.Outcome(i)
			next, err := lookahead(m, V, s0, a)
			if err != nil {
				return nil, 0, err
			}
			v1 += float64(ap) * (r + m.RewardDiscount*next)
		}
		V[s0] = v1
		delta = math.Max(math.Abs(v0-v1), delta)
	}
	return V, delta, nil
}

// EvaluatePolicyIterative repeats sweeps until the change drops below epsilon.
func EvaluatePolicyIterative(m *MDP, policy Policy, opts ...Option) (ValueTable, bool, error) {
	o := newOptions(opts)
	V := NewValueTable(m.NumStates)
	for i := 0; i < o.maxIterations; i++ {
		next, delta, err := EvaluatePolicySweep(m, policy, V)
		if err != nil {
			return nil, false, err
		}
		V = next
		o.logger.Debug().Int("sweep", i+1).Float64("delta", delta).Msg("policy evaluation sweep")
		if delta < o.epsilon {
			return V, true, nil
		}
	}
	return V, false, nil
}
