// Package mdp holds the tabular dynamic-programming core: finite Markov decision
// processes over integer-indexed states, value and policy iteration, finite-horizon
// backward induction and Monte-Carlo policy evaluation.
package mdp

import "fmt"

type State int

type Action int

// NoAction marks states without a decision (terminal states, the final stage).
const NoAction Action = -1

type Objective int

const (
	Maximize Objective = iota
	Minimize
)

func (o Objective) String() string {
	if o == Minimize {
		return "min"
	}
	return "max"
}

func ParseObjective(s string) (Objective, error) {
	switch s {
	case "", "max", "maximize":
		return Maximize, nil
	case "min", "minimize":
		return Minimize, nil
	}
	return Maximize, fmt.Errorf("%w: unknown objective %q", ErrConfiguration, s)
}

type ActionSpace interface {
	Actions(State) []Action
}

type TransitionFunction interface {
	Transition(State, Action) (DiscretePdf[State], error)
}

type RewardFunction interface {
	Reward(State) float64
}

// MDP is an infinite-horizon discounted decision process. Value of a state is its
// reward plus the discounted value of where it leads; terminal states keep their reward.
type MDP struct {
	NumStates          int
	ActionSpace        ActionSpace
	TransitionFunction TransitionFunction
	RewardFunction     RewardFunction
	Terminal           map[State]bool
	RewardDiscount     float64
	Objective          Objective
}

func (m *MDP) IsTerminal(state State) bool {
	term, ok := m.Terminal[state]
	return term && ok
}

func (m *MDP) Check() error {
	if m == nil {
		return fmt.Errorf("%w: nil mdp", ErrConfiguration)
	}
	if m.NumStates <= 0 {
		return fmt.Errorf("%w: mdp has %d states", ErrConfiguration, m.NumStates)
	}
	if m.ActionSpace == nil || m.TransitionFunction == nil || m.RewardFunction == nil {
		return fmt.Errorf("%w: mdp is missing action, transition or reward function", ErrConfiguration)
	}
	if m.RewardDiscount < 0 || m.RewardDiscount > 1 {
		return fmt.Errorf("%w: discount %v outside [0,1]", ErrConfiguration, m.RewardDiscount)
	}
	return nil
}

func (m *MDP) valid(s State) bool {
	return s >= 0 && int(s) < m.NumStates
}

// feasible returns the actions available at s, failing when a non-terminal state has none.
func (m *MDP) feasible(s State) ([]Action, error) {
	actions := m.ActionSpace.Actions(s)
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: state %d", ErrNoFeasibleAction, s)
	}
	return actions, nil
}

func (m *MDP) transition(s State, a Action) (DiscretePdf[State], error) {
	pdf, err := m.TransitionFunction.Transition(s, a)
	if err != nil {
		return DiscretePdf[State]{}, err
	}
	for i := 0; i < pdf.Len(); i++ {
		next, _ := pdf.Outcome(i)
		if !m.valid(next) {
			return DiscretePdf[State]{}, fmt.Errorf("%w: transition from %d under %d reaches unknown state %d", ErrConfiguration, s, a, next)
		}
	}
	return pdf, nil
}
