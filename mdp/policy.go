package mdp

type Policy interface {
	Name() string

	Act(State) DiscretePdf[Action]
}

func (p PolicyTable) Name() string { return "table" }

func (p PolicyTable) Act(s State) DiscretePdf[Action] {
	if s < 0 || int(s) >= len(p) || p[s] == NoAction {
		return DiscretePdf[Action]{}
	}
	return Deterministic(p[s])
}

// PolicyRandom picks uniformly among the available actions.
type PolicyRandom struct {
	ActionSpace ActionSpace
}

func (p PolicyRandom) Name() string {
	return "random"
}

func (p PolicyRandom) Act(s State) DiscretePdf[Action] {
	return Uniform(p.ActionSpace.Actions(s)...)
}

type PolicyGreedy struct {
	Estimator QTable
}

func (g PolicyGreedy) Name() string { return "greedy" }

func (g PolicyGreedy) Act(s State) DiscretePdf[Action] {
	a := g.Estimator.Best(s)
	if a == NoAction {
		return DiscretePdf[Action]{}
	}
	return Deterministic(a)
}

type PolicyEpsilonGreedy struct {
	Q           QTable
	Epsilon     float64
	ActionSpace ActionSpace
}

func (p PolicyEpsilonGreedy) Name() string {
	return "epsilon-greedy"
}

func (p PolicyEpsilonGreedy) Act(s State) DiscretePdf[Action] {
	pdf := DiscretePdf[Action]{}
	actions := p.ActionSpace.Actions(s)
	if len(actions) == 0 {
		return pdf
	}
	best := p.Q.Best(s)
	for _, a := range actions {
		if a == best {
			pdf.Add(a, Probability(1.0-p.Epsilon+p.Epsilon/float64(len(actions))))
		} else {
			pdf.Add(a, Probability(p.Epsilon/float64(len(actions))))
		}
	}
	return pdf
}
