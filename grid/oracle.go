package grid

import (
	"fmt"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

// Oracle derives and caches P(next | state, action) and the sensor likelihood
// P(observation | state) of a Model.
type Oracle struct {
	model       *Model
	actions     []mdp.Action
	transitions [][]mdp.DiscretePdf[mdp.State]
}

func NewOracle(model *Model) *Oracle {
	o := &Oracle{
		model:       model,
		actions:     make([]mdp.Action, len(Directions)),
		transitions: make([][]mdp.DiscretePdf[mdp.State], model.NumStates()),
	}
	for i, d := range Directions {
		o.actions[i] = d.Action()
	}
	for s := range o.transitions {
		o.transitions[s] = make([]mdp.DiscretePdf[mdp.State], len(Directions))
		for _, d := range Directions {
			o.transitions[s][d] = o.resolve(mdp.State(s), d)
		}
	}
	return o
}

// resolve sends the three configured probabilities to the destinations of the
// counterclockwise, intended and clockwise moves, summing coinciding ones.
func (o *Oracle) resolve(s mdp.State, d Direction) mdp.DiscretePdf[mdp.State] {
	from := o.model.Cell(s)
	moves := [3]Direction{d.CounterClockwise(), d, d.Clockwise()}
	pdf := mdp.DiscretePdf[mdp.State]{}
	for i, move := range moves {
		to, _ := o.model.State(o.model.Move(from, move))
		pdf.Add(to, mdp.Probability(o.model.noise[i]))
	}
	return pdf
}

func (o *Oracle) Model() *Model { return o.model }

func (o *Oracle) NumStates() int { return o.model.NumStates() }

// Actions implements mdp.ActionSpace; every direction is available everywhere.
func (o *Oracle) Actions(mdp.State) []mdp.Action {
	return o.actions
}

func (o *Oracle) Transition(s mdp.State, a mdp.Action) (mdp.DiscretePdf[mdp.State], error) {
	d, err := directionOf(a)
	if err != nil {
		return mdp.DiscretePdf[mdp.State]{}, err
	}
	if s < 0 || int(s) >= len(o.transitions) {
		return mdp.DiscretePdf[mdp.State]{}, fmt.Errorf("%w: unknown state %d", mdp.ErrConfiguration, s)
	}
	return o.transitions[s][d], nil
}

func (o *Oracle) Reward(s mdp.State) float64 {
	return o.model.Reward(o.model.Cell(s))
}

// Observation is P(y | x): the sensor reports the true cell with the self
// probability plus the share of every missing neighbor, and each open neighbor
// of y with the neighbor probability.
func (o *Oracle) Observation(y, x mdp.State) float64 {
	n := o.model.NumStates()
	if y < 0 || int(y) >= n || x < 0 || int(x) >= n {
		return 0
	}
	sensor := o.model.sensor
	yc := o.model.Cell(y)
	neighbors := o.model.Neighbors(yc)
	if x == y {
		missing := 4 - len(neighbors)
		return sensor.Self + float64(missing)*sensor.Neighbor
	}
	xc := o.model.Cell(x)
	for _, nb := range neighbors {
		if nb == xc {
			return sensor.Neighbor
		}
	}
	return 0
}

// ObservationSupport lists the states that can produce observation y with their
// likelihoods; the masses sum to one.
func (o *Oracle) ObservationSupport(y mdp.State) mdp.DiscretePdf[mdp.State] {
	pdf := mdp.DiscretePdf[mdp.State]{}
	pdf.Add(y, mdp.Probability(o.Observation(y, y)))
	for _, nb := range o.model.Neighbors(o.model.Cell(y)) {
		x, _ := o.model.State(nb)
		pdf.Add(x, mdp.Probability(o.Observation(y, x)))
	}
	return pdf
}

// MDP exposes the grid to the solvers in package mdp.
func (o *Oracle) MDP(gamma float64, objective mdp.Objective) *mdp.MDP {
	return &mdp.MDP{
		NumStates:          o.model.NumStates(),
		ActionSpace:        o,
		TransitionFunction: o,
		RewardFunction:     o,
		Terminal:           o.model.terminalSet(),
		RewardDiscount:     gamma,
		Objective:          objective,
	}
}
