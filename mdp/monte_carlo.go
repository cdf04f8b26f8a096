package mdp

import (
	"fmt"
	"math/rand"
)

type LearningConfig struct {
	Episodes int
	MaxSteps int
	Start    State
	Alpha    float64
	Epsilon  float64
	// EveryVisit counts every occurrence of a state in an episode as a return
	// sample. The default is first-visit.
	EveryVisit bool
	// Lambda is the trace decay and Eta the step size of TDLambda.
	Lambda float64
	Eta    float64
}

func (c LearningConfig) check(m *MDP) error {
	if err := m.Check(); err != nil {
		return err
	}
	if c.Episodes <= 0 || c.MaxSteps <= 0 {
		return fmt.Errorf("%w: episodes %d, max steps %d", ErrConfiguration, c.Episodes, c.MaxSteps)
	}
	if !m.valid(c.Start) {
		return fmt.Errorf("%w: start state %d", ErrConfiguration, c.Start)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 || c.Alpha < 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha %v, epsilon %v", ErrConfiguration, c.Alpha, c.Epsilon)
	}
	if c.Lambda < 0 || c.Lambda > 1 || c.Eta < 0 || c.Eta > 1 {
		return fmt.Errorf("%w: lambda %v, eta %v", ErrConfiguration, c.Lambda, c.Eta)
	}
	return nil
}

type LearningResult struct {
	Q              QTable
	EpisodeRewards []float64
}

// MonteCarloEvaluate estimates the value of a fixed policy by averaging observed
// discounted returns. States never visited keep value 0.
func MonteCarloEvaluate(m *MDP, policy Policy, cfg LearningConfig, rng *rand.Rand) (ValueTable, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	sums := make([]float64, m.NumStates)
	counts := make([]int, m.NumStates)

	for ep := 0; ep < cfg.Episodes; ep++ {
		episode, err := GenerateEpisode(m, policy, cfg.Start, cfg.MaxSteps, rng)
		if err != nil {
			return nil, err
		}
		returns := episode.Returns(m)
		first := firstVisits(episode)
		for i, step := range episode.Steps {
			if !cfg.EveryVisit && first[step.State0] != i {
				continue
			}
			sums[step.State0] += returns[i]
			counts[step.State0]++
		}
		if episode.Terminated {
			sums[episode.Final] += m.RewardFunction.Reward(episode.Final)
			counts[episode.Final]++
		}
	}

	V := NewValueTable(m.NumStates)
	for s := range V {
		if counts[s] > 0 {
			V[s] = sums[s] / float64(counts[s])
		}
	}
	return V, nil
}

func firstVisits(e Episode) map[State]int {
	first := make(map[State]int, len(e.Steps))
	for i, step := range e.Steps {
		if _, ok := first[step.State0]; !ok {
			first[step.State0] = i
		}
	}
	return first
}

// MCOnPolicyControl learns action values with an epsilon-greedy policy that is
// re-derived from Q before every episode.
func MCOnPolicyControl(m *MDP, cfg LearningConfig, rng *rand.Rand) (*LearningResult, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	Q := NewQTable(m)
	type visitKey struct {
		state  State
		action Action
	}
	sums := map[visitKey]float64{}
	counts := map[visitKey]int{}
	res := &LearningResult{Q: Q}

	for ep := 0; ep < cfg.Episodes; ep++ {
		policy := PolicyEpsilonGreedy{Q: Q, Epsilon: cfg.Epsilon, ActionSpace: m.ActionSpace}
		episode, err := GenerateEpisode(m, policy, cfg.Start, cfg.MaxSteps, rng)
		if err != nil {
			return nil, err
		}
		res.EpisodeRewards = append(res.EpisodeRewards, episode.TotalReward(m))

		returns := episode.Returns(m)
		visited := map[visitKey]bool{}
		for i, step := range episode.Steps {
			key := visitKey{step.State0, step.Action}
			if visited[key] && !cfg.EveryVisit {
				continue
			}
			visited[key] = true
			sums[key] += returns[i]
			counts[key]++
			Q.Set(step.State0, step.Action, sums[key]/float64(counts[key]))
		}
	}
	return res, nil
}

// MCOffPolicyControl learns the greedy target policy from episodes generated by
// an epsilon-greedy behavior policy, weighting returns by the importance ratio
// target/behavior. The backward pass of an episode stops at the first action
// the target policy would not take.
func MCOffPolicyControl(m *MDP, cfg LearningConfig, rng *rand.Rand) (*LearningResult, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	Q := NewQTable(m)
	C := NewQTable(m)
	res := &LearningResult{Q: Q}

	for ep := 0; ep < cfg.Episodes; ep++ {
		behavior := PolicyEpsilonGreedy{Q: Q, Epsilon: cfg.Epsilon, ActionSpace: m.ActionSpace}
		episode, err := GenerateEpisode(m, behavior, cfg.Start, cfg.MaxSteps, rng)
		if err != nil {
			return nil, err
		}
		res.EpisodeRewards = append(res.EpisodeRewards, episode.TotalReward(m))

		// behavior probabilities are taken before Q moves within the episode
		probs := make([]float64, len(episode.Steps))
		for i, step := range episode.Steps {
			probs[i] = float64(behavior.Act(step.State0).Prob(step.Action))
		}

		returns := episode.Returns(m)
		W := 1.0
		for i := len(episode.Steps) - 1; i >= 0; i-- {
			s, a := episode.Steps[i].State0, episode.Steps[i].Action
			c := C.Get(s, a) + W
			C.Set(s, a, c)
			q := Q.Get(s, a)
			Q.Set(s, a, q+W/c*(returns[i]-q))

			if a != Q.Best(s) || probs[i] == 0 {
				break
			}
			W /= probs[i]
		}
	}
	return res, nil
}
