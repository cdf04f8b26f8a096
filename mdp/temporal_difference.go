package mdp

import "math/rand"

// bootstrap is the value used for the successor in a TD target; a terminal
// successor is worth exactly its reward.
func bootstrap(m *MDP, q QTable, next State, nextAction Action) float64 {
	if m.IsTerminal(next) {
		return m.RewardFunction.Reward(next)
	}
	if nextAction == NoAction {
		return q.BestValue(next)
	}
	return q.Get(next, nextAction)
}

func TDOnPolicySARSA(m *MDP, cfg LearningConfig, rng *rand.Rand) (*LearningResult, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	Q := NewQTable(m)
	res := &LearningResult{Q: Q}
	policy := PolicyEpsilonGreedy{Q: Q, Epsilon: cfg.Epsilon, ActionSpace: m.ActionSpace}

	for ep := 0; ep < cfg.Episodes; ep++ {
		state := cfg.Start
		total := 0.0
		action := policy.Act(state).Choose(rng)

		for t := 0; t < cfg.MaxSteps && !m.IsTerminal(state); t++ {
			s1Pdf, err := m.transition(state, action)
			if err != nil {
				return nil, err
			}
			nextState := s1Pdf.Choose(rng)
			reward := m.RewardFunction.Reward(state)
			total += reward

			nextAction := NoAction
			if !m.IsTerminal(nextState) {
				nextAction = policy.Act(nextState).Choose(rng)
			}

			qsa := Q.Get(state, action)
			tdTarget := reward + m.RewardDiscount*bootstrap(m, Q, nextState, nextAction)
			Q.Set(state, action, qsa+cfg.Alpha*(tdTarget-qsa))

			state = nextState
			action = nextAction
		}
		if m.IsTerminal(state) {
			total += m.RewardFunction.Reward(state)
		}
		res.EpisodeRewards = append(res.EpisodeRewards, total)
	}
	return res, nil
}

func TDOffPolicyQLearning(m *MDP, cfg LearningConfig, rng *rand.Rand) (*LearningResult, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	Q := NewQTable(m)
	res := &LearningResult{Q: Q}

	for ep := 0; ep < cfg.Episodes; ep++ {
		state := cfg.Start
		total := 0.0
		for t := 0; t < cfg.MaxSteps && !m.IsTerminal(state); t++ {
			behavior := PolicyEpsilonGreedy{Q: Q, Epsilon: cfg.Epsilon, ActionSpace: m.ActionSpace}
			action := behavior.Act(state).Choose(rng)

			s1Pdf, err := m.transition(state, action)
			if err != nil {
				return nil, err
			}
			nextState := s1Pdf.Choose(rng)
			reward := m.RewardFunction.Reward(state)
			total += reward

			qsa := Q.Get(state, action)
			tdTarget := reward + m.RewardDiscount*bootstrap(m, Q, nextState, NoAction)
			Q.Set(state, action, qsa+cfg.Alpha*(tdTarget-qsa))

			state = nextState
		}
		if m.IsTerminal(state) {
			total += m.RewardFunction.Reward(state)
		}
		res.EpisodeRewards = append(res.EpisodeRewards, total)
	}
	return res, nil
}

// traceCutoff drops eligibility traces too small to move a Q value.
const traceCutoff = 1e-8

type stateAction struct {
	s State
	a Action
}

// TDLambda is SARSA with accumulating eligibility traces. Each TD error updates
// every pair visited earlier in the episode in proportion to its trace, which
// decays by γλ per step. Eta is the step size; Lambda 0 reduces to SARSA.
func TDLambda(m *MDP, cfg LearningConfig, rng *rand.Rand) (*LearningResult, error) {
	if err := cfg.check(m); err != nil {
		return nil, err
	}
	Q := NewQTable(m)
	res := &LearningResult{Q: Q}
	policy := PolicyEpsilonGreedy{Q: Q, Epsilon: cfg.Epsilon, ActionSpace: m.ActionSpace}
	decay := m.RewardDiscount * cfg.Lambda

	for ep := 0; ep < cfg.Episodes; ep++ {
		traces := map[stateAction]float64{}
		state := cfg.Start
		total := 0.0
		action := policy.Act(state).Choose(rng)

		for t := 0; t < cfg.MaxSteps && !m.IsTerminal(state); t++ {
			s1Pdf, err := m.transition(state, action)
			if err != nil {
				return nil, err
			}
			nextState := s1Pdf.Choose(rng)
			reward := m.RewardFunction.Reward(state)
			total += reward

			nextAction := NoAction
			if !m.IsTerminal(nextState) {
				nextAction = policy.Act(nextState).Choose(rng)
			}

			delta := reward + m.RewardDiscount*bootstrap(m, Q, nextState, nextAction) - Q.Get(state, action)
			traces[stateAction{state, action}]++
			for sa, e := range traces {
				Q.Set(sa.s, sa.a, Q.Get(sa.s, sa.a)+cfg.Eta*delta*e)
				if e*decay < traceCutoff {
					delete(traces, sa)
				} else {
					traces[sa] = e * decay
				}
			}

			state = nextState
			action = nextAction
		}
		if m.IsTerminal(state) {
			total += m.RewardFunction.Reward(state)
		}
		res.EpisodeRewards = append(res.EpisodeRewards, total)
	}
	return res, nil
}
