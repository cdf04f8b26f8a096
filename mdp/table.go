package mdp

import "math"

// ValueTable is a state-indexed value function.
type ValueTable []float64

func NewValueTable(n int) ValueTable {
	return make(ValueTable, n)
}

func (v ValueTable) Estimate(s State) float64 {
	if s < 0 || int(s) >= len(v) {
		return 0
	}
	return v[s]
}

func (v ValueTable) Clone() ValueTable {
	return append(ValueTable(nil), v...)
}

// MaxDiff is the L-infinity distance between two tables of equal length.
func (v ValueTable) MaxDiff(other ValueTable) float64 {
	delta := 0.0
	for s := range v {
		delta = math.Max(delta, math.Abs(v[s]-other[s]))
	}
	return delta
}

// PolicyTable maps each state to its chosen action, NoAction where nothing is chosen.
type PolicyTable []Action

func NewPolicyTable(n int) PolicyTable {
	p := make(PolicyTable, n)
	for i := range p {
		p[i] = NoAction
	}
	return p
}

func (p PolicyTable) Clone() PolicyTable {
	return append(PolicyTable(nil), p...)
}

func (p PolicyTable) Equal(other PolicyTable) bool {
	if len(p) != len(other) {
		return false
	}
	for s := range p {
		if p[s] != other[s] {
			return false
		}
	}
	return true
}

// StageValues is indexed [stage][state] for stages 0..N.
type StageValues [][]float64

// StagePolicy is indexed [stage][state]; the final stage holds NoAction.
type StagePolicy [][]Action

func newStageTables(stages, states int) (StageValues, StagePolicy) {
	values := make(StageValues, stages)
	policy := make(StagePolicy, stages)
	for k := 0; k < stages; k++ {
		values[k] = make([]float64, states)
		policy[k] = make([]Action, states)
		for x := range policy[k] {
			policy[k][x] = NoAction
		}
	}
	return values, policy
}
