package mdp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEpisode(t *testing.T) {
	m := corridor(0.9)
	rng := rand.New(rand.NewSource(1))
	policy := PolicyTable{right, right, right, NoAction}

	ep, err := GenerateEpisode(m, policy, 0, 10, rng)
	require.NoError(t, err)
	assert.True(t, ep.Terminated)
	assert.Equal(t, State(3), ep.Final)
	require.Len(t, ep.Steps, 3)
	assert.Equal(t, Transition{State0: 1, Action: right, State1: 2, Reward: 0}, ep.Steps[1])

	returns := ep.Returns(m)
	assert.InDelta(t, 0.729, returns[0], 1e-12)
	assert.InDelta(t, 0.9, returns[2], 1e-12)
	assert.Equal(t, 1.0, ep.TotalReward(m))

	_, err = GenerateEpisode(m, policy, 9, 10, rng)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = GenerateEpisode(m, PolicyTable{NoAction, NoAction, NoAction, NoAction}, 0, 10, rng)
	assert.ErrorIs(t, err, ErrNoFeasibleAction)
}

func TestMonteCarloEvaluateDeterministicPolicy(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 5, MaxSteps: 20, Start: 0}
	v, err := MonteCarloEvaluate(m, PolicyTable{right, right, right, NoAction}, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for s, want := range corridorValues {
		assert.InDelta(t, want, v[s], 1e-12)
	}
}

func TestMonteCarloFirstVersusEveryVisit(t *testing.T) {
	// Reward 1 everywhere and a policy that never leaves state 0: a truncated
	// two-step episode visits 0 twice with returns 1.9 and 1.
	m := corridor(0.9)
	m.RewardFunction = chain{n: 4, rewards: []float64{1, 1, 1, 1}}
	stay := PolicyTable{left, left, left, NoAction}
	cfg := LearningConfig{Episodes: 3, MaxSteps: 2, Start: 0}

	first, err := MonteCarloEvaluate(m, stay, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.InDelta(t, 1.9, first[0], 1e-12)

	cfg.EveryVisit = true
	every, err := MonteCarloEvaluate(m, stay, cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.InDelta(t, 1.45, every[0], 1e-12)

	assert.Zero(t, first[2], "unvisited states keep zero")
}

func TestMonteCarloEvaluateApproachesExact(t *testing.T) {
	m := corridor(0.9)
	random := PolicyRandom{ActionSpace: m.ActionSpace}
	cfg := LearningConfig{Episodes: 4000, MaxSteps: 500, Start: 2}

	v, err := MonteCarloEvaluate(m, random, cfg, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	assert.InDelta(t, 0.6622551614610905, v[2], 0.03)
}

func TestLearningConfigValidation(t *testing.T) {
	m := corridor(0.9)
	rng := rand.New(rand.NewSource(1))
	for _, cfg := range []LearningConfig{
		{Episodes: 0, MaxSteps: 1},
		{Episodes: 1, MaxSteps: 0},
		{Episodes: 1, MaxSteps: 1, Start: 4},
		{Episodes: 1, MaxSteps: 1, Alpha: 2},
		{Episodes: 1, MaxSteps: 1, Epsilon: -0.1},
	} {
		_, err := TDOffPolicyQLearning(m, cfg, rng)
		assert.ErrorIs(t, err, ErrConfiguration, "%+v", cfg)
	}
}

func TestQLearningFindsCorridorExit(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 500, MaxSteps: 100, Start: 0, Alpha: 0.5, Epsilon: 1}
	res, err := TDOffPolicyQLearning(m, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	require.Len(t, res.EpisodeRewards, cfg.Episodes)

	policy := res.Q.Policy()
	assert.Equal(t, []Action{right, right, right}, []Action(policy[:3]))
	assert.InDelta(t, 0.9, res.Q.Get(2, right), 1e-6)
	assert.InDelta(t, 0.729, res.Q.StateValues()[0], 1e-3)
}

func TestSARSALearnsLastStep(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 500, MaxSteps: 100, Start: 0, Alpha: 0.5, Epsilon: 1}
	res, err := TDOnPolicySARSA(m, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Len(t, res.EpisodeRewards, cfg.Episodes)
	assert.Equal(t, right, res.Q.Best(2))
	assert.InDelta(t, 0.9, res.Q.Get(2, right), 1e-6)
}

func TestMCControlLearnsLastStep(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 300, MaxSteps: 200, Start: 0, Epsilon: 1}
	res, err := MCOnPolicyControl(m, cfg, rand.New(rand.NewSource(9)))
	require.NoError(t, err)
	assert.Len(t, res.EpisodeRewards, cfg.Episodes)
	assert.InDelta(t, 0.9, res.Q.Get(2, right), 1e-12)
	assert.Greater(t, res.Q.Get(2, right), res.Q.Get(2, left))

	greedy := PolicyGreedy{Estimator: res.Q}
	assert.Equal(t, 1, greedy.Act(2).Len())
	assert.Equal(t, "greedy", greedy.Name())
}

func TestMCOffPolicyControlLearnsLastStep(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 300, MaxSteps: 200, Start: 0, Epsilon: 1}
	res, err := MCOffPolicyControl(m, cfg, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	assert.Len(t, res.EpisodeRewards, cfg.Episodes)
	// every sample of (2, right) ends the episode with the same return
	assert.InDelta(t, 0.9, res.Q.Get(2, right), 1e-12)
	assert.Greater(t, res.Q.Get(2, right), res.Q.Get(2, left))
	assert.Equal(t, right, res.Q.Best(2))

	_, err = MCOffPolicyControl(m, LearningConfig{Episodes: 0, MaxSteps: 1}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEpsilonGreedyMass(t *testing.T) {
	m := corridor(0.9)
	q := NewQTable(m)
	q.Set(1, right, 1)
	pdf := PolicyEpsilonGreedy{Q: q, Epsilon: 0.2, ActionSpace: m.ActionSpace}.Act(1)
	require.NoError(t, pdf.Check())
	assert.InDelta(t, 0.9, float64(pdf.Prob(right)), 1e-12)
	assert.InDelta(t, 0.1, float64(pdf.Prob(left)), 1e-12)
}

func TestQLearningMinimizesCost(t *testing.T) {
	m := corridor(0.9)
	m.RewardFunction = chain{n: 4, rewards: []float64{1, 1, 1, 0}}
	m.Objective = Minimize

	cfg := LearningConfig{Episodes: 500, MaxSteps: 100, Start: 0, Alpha: 0.5, Epsilon: 1}
	res, err := TDOffPolicyQLearning(m, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, Minimize, res.Q.Objective())
	assert.Equal(t, []Action{right, right, right}, []Action(res.Q.Policy()[:3]))
	assert.InDelta(t, 1.0, res.Q.StateValues()[2], 1e-6)
	assert.InDelta(t, 2.71, res.Q.StateValues()[0], 1e-3)

	cfg.Epsilon = 0.1
	res, err = TDOffPolicyQLearning(m, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	late := 0.0
	for _, cost := range res.EpisodeRewards[cfg.Episodes-50:] {
		late += cost
	}
	assert.Less(t, late/50, 10.0, "greedy steps should head for the exit")
}

func TestQTableFollowsObjective(t *testing.T) {
	m := corridor(0.9)
	q := NewQTable(m)
	q.Set(1, left, 2)
	q.Set(1, right, 1)
	assert.Equal(t, left, q.Best(1))
	assert.Equal(t, 2.0, q.BestValue(1))

	m.Objective = Minimize
	q = NewQTable(m)
	q.Set(1, left, 2)
	q.Set(1, right, 1)
	assert.Equal(t, right, q.Best(1))
	assert.Equal(t, 1.0, q.BestValue(1))

	pdf := PolicyEpsilonGreedy{Q: q, Epsilon: 0.2, ActionSpace: m.ActionSpace}.Act(1)
	assert.InDelta(t, 0.9, float64(pdf.Prob(right)), 1e-12)
}

func TestTDLambdaLearnsCorridor(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 500, MaxSteps: 100, Start: 0, Epsilon: 1, Lambda: 0.7, Eta: 0.3}
	res, err := TDLambda(m, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	require.Len(t, res.EpisodeRewards, cfg.Episodes)
	assert.Equal(t, right, res.Q.Best(2))
	assert.InDelta(t, 0.9, res.Q.Get(2, right), 1e-6)
}

func TestTDLambdaWithoutTracesIsSARSA(t *testing.T) {
	m := corridor(0.9)
	cfg := LearningConfig{Episodes: 50, MaxSteps: 40, Start: 0, Alpha: 0.4, Eta: 0.4, Epsilon: 0.3}
	sarsa, err := TDOnPolicySARSA(m, cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	td0, err := TDLambda(m, cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.Equal(t, sarsa.EpisodeRewards, td0.EpisodeRewards)
	for s := State(0); s < 4; s++ {
		for _, a := range []Action{left, right} {
			assert.Equal(t, sarsa.Q.Get(s, a), td0.Q.Get(s, a), "Q(%d,%d)", s, a)
		}
	}
}

func TestTDLambdaValidation(t *testing.T) {
	m := corridor(0.9)
	rng := rand.New(rand.NewSource(1))
	for _, cfg := range []LearningConfig{
		{Episodes: 1, MaxSteps: 1, Lambda: 1.5},
		{Episodes: 1, MaxSteps: 1, Eta: -0.1},
	} {
		_, err := TDLambda(m, cfg, rng)
		assert.ErrorIs(t, err, ErrConfiguration, "%+v", cfg)
	}
}
