package mdp

import (
	"fmt"
	"math/rand"
)

// Learner is the shape shared by the model-free control methods.
type Learner func(m *MDP, cfg LearningConfig, rng *rand.Rand) (*LearningResult, error)

type AverageRewards struct {
	Name string
	// Rewards[i] is the mean total reward of episode i over all runs.
	Rewards []float64
	// Last is the result of the final run.
	Last *LearningResult
}

// RunRepeatedly trains a fresh learner runs times and averages the per-episode
// reward curves. Run i draws from its own source seeded with seed+i.
func RunRepeatedly(name string, m *MDP, learn Learner, cfg LearningConfig, runs int, seed int64) (AverageRewards, error) {
	if runs <= 0 {
		return AverageRewards{}, fmt.Errorf("%w: runs %d", ErrConfiguration, runs)
	}
	avg := AverageRewards{Name: name, Rewards: make([]float64, cfg.Episodes)}
	for i := 0; i < runs; i++ {
		res, err := learn(m, cfg, rand.New(rand.NewSource(seed+int64(i))))
		if err != nil {
			return AverageRewards{}, fmt.Errorf("%s run %d: %w", name, i, err)
		}
		for e, r := range res.EpisodeRewards {
			avg.Rewards[e] += r
		}
		avg.Last = res
	}
	for e := range avg.Rewards {
		avg.Rewards[e] /= float64(runs)
	}
	return avg, nil
}

// RolloutRewards runs cfg.Episodes episodes of a fixed policy from cfg.Start and
// returns the total reward of each, the baseline learning curves are compared to.
func RolloutRewards(m *MDP, policy Policy, cfg LearningConfig, rng *rand.Rand) ([]float64, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	rewards := make([]float64, 0, cfg.Episodes)
	for ep := 0; ep < cfg.Episodes; ep++ {
		episode, err := GenerateEpisode(m, policy, cfg.Start, cfg.MaxSteps, rng)
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, episode.TotalReward(m))
	}
	return rewards, nil
}
