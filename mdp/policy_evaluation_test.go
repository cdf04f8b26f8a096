package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePolicyExact(t *testing.T) {
	m := corridor(0.9)
	policy := PolicyTable{right, right, right, NoAction}

	v, err := EvaluatePolicy(m, policy)
	require.NoError(t, err)
	for s, want := range corridorValues {
		assert.InDelta(t, want, v[s], 1e-12)
	}

	iterative, converged, err := EvaluatePolicyIterative(m, policy, WithEpsilon(1e-12), WithMaxIterations(1000))
	require.NoError(t, err)
	assert.True(t, converged)
	assert.InDelta(t, 0, v.MaxDiff(iterative), 1e-9)
}

func TestEvaluatePolicyRandomMatchesSweeps(t *testing.T) {
	m := corridor(0.9)
	v, converged, err := EvaluatePolicyIterative(m, PolicyRandom{ActionSpace: m.ActionSpace}, WithEpsilon(1e-12), WithMaxIterations(5000))
	require.NoError(t, err)
	require.True(t, converged)

	// Fixed point of V(s) = 0.9 (V(s-1) + V(s+1)) / 2 with V(3) = 1.
	assert.InDelta(t, 0.6622551614610905, v[2], 1e-9)
	assert.InDelta(t, 0.38591847538380086, v[0], 1e-9)
}

func TestInducedChainRows(t *testing.T) {
	m := corridor(0.9)
	p, err := InducedChain(m, PolicyTable{left, right, left, NoAction})
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.At(0, 0))
	assert.Equal(t, 1.0, p.At(1, 2))
	assert.Equal(t, 1.0, p.At(2, 1))
	assert.Equal(t, 1.0, p.At(3, 3))

	_, err = InducedChain(m, PolicyTable{left, NoAction, left, NoAction})
	assert.ErrorIs(t, err, ErrNoFeasibleAction)

	_, err = InducedChain(m, PolicyTable{left})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEvaluatePolicyUndiscountedLoopIsSingular(t *testing.T) {
	m := corridor(1)
	m.Terminal = nil
	_, err := EvaluatePolicy(m, PolicyTable{left, left, left, left})
	assert.ErrorIs(t, err, ErrSingularSystem)
}

func TestPolicyIterationCorridor(t *testing.T) {
	m := corridor(0.9)
	res, err := PolicyIteration(m)
	require.NoError(t, err)
	require.True(t, res.Converged)
	assert.Equal(t, PolicyTable{right, right, right, NoAction}, res.Policy)
	for s, want := range corridorValues {
		assert.InDelta(t, want, res.Values[s], 1e-12)
	}
	assert.Equal(t, 0.0, res.Deltas[len(res.Deltas)-1])

	vi, err := ValueIteration(m)
	require.NoError(t, err)
	assert.True(t, res.Policy.Equal(vi.Policy))
}

func TestPolicyIterationInitialPolicy(t *testing.T) {
	m := corridor(0.9)
	res, err := PolicyIteration(m, WithInitialPolicy(PolicyTable{right, right, right, NoAction}))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)

	_, err = PolicyIteration(m, WithInitialPolicy(PolicyTable{right}))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestGreedyPolicySkipsTerminals(t *testing.T) {
	p, err := GreedyPolicy(corridor(0.9), ValueTable{0, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, NoAction, p[3])
	assert.Equal(t, right, p[2])
	assert.Equal(t, left, p[0], "ties go to the first action")
}
