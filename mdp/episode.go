package mdp

import (
	"fmt"
	"math/rand"
)

type Transition struct {
	State0 State
	Action Action
	State1 State
	Reward float64
}

// Episode is one simulated trajectory. Each step carries the reward of the state it
// leaves; Final is where the episode stopped.
type Episode struct {
	Steps      []Transition
	Final      State
	Terminated bool
}

// Returns computes G_t = r(s_t) + γ G_{t+1} for every step. A terminated episode
// bootstraps from the terminal reward, a truncated one from zero.
func (e Episode) Returns(m *MDP) []float64 {
	g := 0.0
	if e.Terminated {
		g = m.RewardFunction.Reward(e.Final)
	}
	returns := make([]float64, len(e.Steps))
	for i := len(e.Steps) - 1; i >= 0; i-- {
		g = e.Steps[i].Reward + m.RewardDiscount*g
		returns[i] = g
	}
	return returns
}

// TotalReward is the undiscounted reward collected, terminal reward included.
func (e Episode) TotalReward(m *MDP) float64 {
	total := 0.0
	for _, step := range e.Steps {
		total += step.Reward
	}
	if e.Terminated {
		total += m.RewardFunction.Reward(e.Final)
	}
	return total
}

func GenerateEpisode(m *MDP, policy Policy, start State, maxSteps int, rng *rand.Rand) (Episode, error) {
	if !m.valid(start) {
		return Episode{}, fmt.Errorf("%w: start state %d", ErrConfiguration, start)
	}
	var episode Episode
	state := start
	for t := 0; t < maxSteps && !m.IsTerminal(state); t++ {
		aPdf := policy.Act(state)
		if aPdf.Len() == 0 {
			return Episode{}, fmt.Errorf("%w: policy %s has no action at state %d", ErrNoFeasibleAction, policy.Name(), state)
		}
		action := aPdf.Choose(rng)
		s1Pdf, err := m.transition(state, action)
		if err != nil {
			return Episode{}, err
		}
		nextState := s1Pdf.Choose(rng)

		episode.Steps = append(episode.Steps, Transition{
			State0: state,
			Action: action,
			State1: nextState,
			Reward: m.RewardFunction.Reward(state),
		})
		state = nextState
	}
	episode.Final = state
	episode.Terminated = m.IsTerminal(state)
	return episode, nil
}
