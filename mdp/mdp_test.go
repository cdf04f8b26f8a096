package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	left  Action = 0
	right Action = 1
)

// chain is a deterministic corridor 0..n-1; moving left from 0 or right from
// n-1 stays in place.
type chain struct {
	n       int
	rewards []float64
	actions []Action
}

func (c chain) Actions(State) []Action { return c.actions }

func (c chain) Transition(s State, a Action) (DiscretePdf[State], error) {
	switch a {
	case left:
		return Deterministic(max(s-1, 0)), nil
	case right:
		return Deterministic(min(s+1, State(c.n-1))), nil
	}
	return DiscretePdf[State]{}, ErrInvalidAction
}

func (c chain) Reward(s State) float64 { return c.rewards[s] }

// corridor has reward 1 at the terminal right end and 0 elsewhere.
func corridor(gamma float64) *MDP {
	c := chain{n: 4, rewards: []float64{0, 0, 0, 1}, actions: []Action{left, right}}
	return &MDP{
		NumStates:          c.n,
		ActionSpace:        c,
		TransitionFunction: c,
		RewardFunction:     c,
		Terminal:           map[State]bool{3: true},
		RewardDiscount:     gamma,
	}
}

func TestCheck(t *testing.T) {
	m := corridor(1.5)
	assert.ErrorIs(t, m.Check(), ErrConfiguration)

	m = corridor(0.9)
	m.NumStates = 0
	assert.ErrorIs(t, m.Check(), ErrConfiguration)

	var nilMDP *MDP
	assert.ErrorIs(t, nilMDP.Check(), ErrConfiguration)

	assert.NoError(t, corridor(0.9).Check())
}

func TestParseObjective(t *testing.T) {
	obj, err := ParseObjective("min")
	require.NoError(t, err)
	assert.Equal(t, Minimize, obj)
	assert.Equal(t, "min", obj.String())

	obj, err = ParseObjective("")
	require.NoError(t, err)
	assert.Equal(t, Maximize, obj)

	_, err = ParseObjective("sideways")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestArgoptBreaksTiesByOrder(t *testing.T) {
	assert.Equal(t, 1, argopt(Maximize, []float64{0, 2, 2 + 1e-12, 1}))
	assert.Equal(t, 0, argopt(Minimize, []float64{-1, 3, -1}))
	assert.Equal(t, 2, argopt(Minimize, []float64{1, 3, -1}))
}
