package mdp

// QTable is a state × action value table. Each state row follows the order of the
// actions its action space enumerates; Best and BestValue follow the objective of
// the MDP the table was built for.
type QTable struct {
	objective Objective
	actions   [][]Action
	values    [][]float64
}

func NewQTable(m *MDP) QTable {
	q := QTable{
		objective: m.Objective,
		actions:   make([][]Action, m.NumStates),
		values:    make([][]float64, m.NumStates),
	}
	for s := 0; s < m.NumStates; s++ {
		q.actions[s] = append([]Action(nil), m.ActionSpace.Actions(State(s))...)
		q.values[s] = make([]float64, len(q.actions[s]))
	}
	return q
}

func (q QTable) slot(s State, a Action) int {
	if s < 0 || int(s) >= len(q.actions) {
		return -1
	}
	for i, candidate := range q.actions[s] {
		if candidate == a {
			return i
		}
	}
	return -1
}

func (q QTable) Get(s State, a Action) float64 {
	i := q.slot(s, a)
	if i < 0 {
		return 0
	}
	return q.values[s][i]
}

func (q QTable) Set(s State, a Action, v float64) {
	if i := q.slot(s, a); i >= 0 {
		q.values[s][i] = v
	}
}

func (q QTable) Objective() Objective { return q.objective }

// Best is the highest valued action at s, or the lowest valued one for a
// minimizing table.
func (q QTable) Best(s State) Action {
	if s < 0 || int(s) >= len(q.actions) || len(q.actions[s]) == 0 {
		return NoAction
	}
	return q.actions[s][argopt(q.objective, q.values[s])]
}

func (q QTable) BestValue(s State) float64 {
	if s < 0 || int(s) >= len(q.actions) || len(q.values[s]) == 0 {
		return 0
	}
	return q.values[s][argopt(q.objective, q.values[s])]
}

func (q QTable) StateValues() ValueTable {
	v := NewValueTable(len(q.values))
	for s := range q.values {
		v[s] = q.BestValue(State(s))
	}
	return v
}

func (q QTable) Policy() PolicyTable {
	p := NewPolicyTable(len(q.values))
	for s := range q.values {
		p[s] = q.Best(State(s))
	}
	return p
}
