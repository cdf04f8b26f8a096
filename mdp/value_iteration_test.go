package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corridorValues = []float64{0.729, 0.81, 0.9, 1}

func TestValueIterationCorridor(t *testing.T) {
	res, err := ValueIteration(corridor(0.9))
	require.NoError(t, err)
	require.True(t, res.Converged)

	for s, want := range corridorValues {
		assert.InDelta(t, want, res.Values[s], 1e-9, "state %d", s)
	}
	assert.Equal(t, PolicyTable{right, right, right, NoAction}, res.Policy)
	assert.Len(t, res.Deltas, res.Iterations)
	for i := 1; i < len(res.Deltas); i++ {
		assert.LessOrEqual(t, res.Deltas[i], res.Deltas[i-1]+1e-12)
	}
}

func TestValueIterationZeroInit(t *testing.T) {
	res, err := ValueIteration(corridor(0.9), WithZeroInit(), WithEpsilon(1e-12))
	require.NoError(t, err)
	require.True(t, res.Converged)
	for s, want := range corridorValues {
		assert.InDelta(t, want, res.Values[s], 1e-9)
	}
}

func TestValueIterationCap(t *testing.T) {
	res, err := ValueIteration(corridor(0.9), WithMaxIterations(1))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Policy, 4)
}

func TestValueIterationMinimizesCost(t *testing.T) {
	m := corridor(0.9)
	m.RewardFunction = chain{n: 4, rewards: []float64{1, 1, 1, 0}}
	m.Objective = Minimize

	res, err := ValueIteration(m, WithEpsilon(1e-10), WithMaxIterations(500))
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.Equal(t, PolicyTable{right, right, right, NoAction}, res.Policy)
	assert.InDelta(t, 1.0, res.Values[2], 1e-9)
	assert.InDelta(t, 1.9, res.Values[1], 1e-9)
}

func TestObjectiveOptionOverridesMDP(t *testing.T) {
	m := corridor(0.9)
	m.RewardFunction = chain{n: 4, rewards: []float64{1, 1, 1, 0}}

	vi, err := ValueIteration(m, WithObjective(Minimize), WithEpsilon(1e-10), WithMaxIterations(500))
	require.NoError(t, err)
	assert.Equal(t, PolicyTable{right, right, right, NoAction}, vi.Policy)
	assert.InDelta(t, 1.9, vi.Values[1], 1e-9)

	pi, err := PolicyIteration(m, WithObjective(Minimize))
	require.NoError(t, err)
	require.True(t, pi.Converged)
	assert.Equal(t, vi.Policy, pi.Policy)

	assert.Equal(t, Maximize, m.Objective)
	maxed, err := ValueIteration(m, WithEpsilon(1e-10), WithMaxIterations(500))
	require.NoError(t, err)
	assert.Equal(t, left, maxed.Policy[2])
}

type noActions struct{}

func (noActions) Actions(State) []Action { return nil }

func TestValueIterationNoFeasibleAction(t *testing.T) {
	m := corridor(0.9)
	m.ActionSpace = noActions{}
	_, err := ValueIteration(m)
	assert.ErrorIs(t, err, ErrNoFeasibleAction)
	assert.ErrorIs(t, err, ErrConfiguration)
}

type leaky struct{ chain }

func (l leaky) Transition(State, Action) (DiscretePdf[State], error) {
	return Deterministic(State(99)), nil
}

func TestValueIterationRejectsUnknownSuccessor(t *testing.T) {
	m := corridor(0.9)
	m.TransitionFunction = leaky{}
	_, err := ValueIteration(m)
	assert.ErrorIs(t, err, ErrConfiguration)
}
