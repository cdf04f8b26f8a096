package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CodeStranger-Fred/beliefdp/belief"
	"github.com/CodeStranger-Fred/beliefdp/grid"
	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

type GridConfig struct {
	// Rewards holds one row per entry; "#", "W" or "wall" mark walls.
	Rewards             []string  `mapstructure:"rewards"`
	ActionNoise         []float64 `mapstructure:"action_noise"`
	ObservationSelf     float64   `mapstructure:"observation_self"`
	ObservationNeighbor float64   `mapstructure:"observation_neighbor"`
	// Terminals are "row,col" cells.
	Terminals []string `mapstructure:"terminals"`
}

func (g GridConfig) Model() (*grid.Model, error) {
	rewards, err := grid.ParseRewards(g.Rewards)
	if err != nil {
		return nil, err
	}
	if len(g.ActionNoise) != 3 {
		return nil, fmt.Errorf("%w: grid.action_noise needs 3 entries, got %d", mdp.ErrConfiguration, len(g.ActionNoise))
	}
	terminals := make([]grid.Cell, 0, len(g.Terminals))
	for _, s := range g.Terminals {
		cell, err := ParseCell(s)
		if err != nil {
			return nil, err
		}
		terminals = append(terminals, cell)
	}
	return grid.NewModel(grid.Config{
		Rewards:          rewards,
		ActionNoise:      grid.ActionNoise{g.ActionNoise[0], g.ActionNoise[1], g.ActionNoise[2]},
		ObservationNoise: grid.ObservationNoise{Self: g.ObservationSelf, Neighbor: g.ObservationNeighbor},
		Terminals:        terminals,
	})
}

// ParseCell reads "row,col".
func ParseCell(s string) (grid.Cell, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return grid.Cell{}, fmt.Errorf("%w: cell %q, want row,col", mdp.ErrConfiguration, s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return grid.Cell{}, fmt.Errorf("%w: cell %q: %v", mdp.ErrConfiguration, s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return grid.Cell{}, fmt.Errorf("%w: cell %q: %v", mdp.ErrConfiguration, s, err)
	}
	return grid.Cell{Row: row, Col: col}, nil
}

func openState(m *grid.Model, s string) (mdp.State, error) {
	cell, err := ParseCell(s)
	if err != nil {
		return 0, err
	}
	state, ok := m.State(cell)
	if !ok {
		return 0, fmt.Errorf("%w: %v is not an open cell", mdp.ErrConfiguration, cell)
	}
	return state, nil
}

type BeliefConfig struct {
	// Prior entries are "row,col=p"; an empty prior is uniform.
	Prior []string `mapstructure:"prior"`
	// Steps are "direction:row,col", the action taken and the cell observed.
	Steps     []string `mapstructure:"steps"`
	PerSource bool     `mapstructure:"per_source"`
}

type BeliefStep struct {
	Action      grid.Direction
	Observation mdp.State
}

func (b BeliefConfig) PriorBelief(m *grid.Model) (belief.Belief, error) {
	if len(b.Prior) == 0 {
		return belief.Uniform(m.NumStates()), nil
	}
	prior := make(belief.Belief, m.NumStates())
	for _, entry := range b.Prior {
		cell, p, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("%w: prior entry %q, want row,col=p", mdp.ErrConfiguration, entry)
		}
		s, err := openState(m, cell)
		if err != nil {
			return nil, err
		}
		mass, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: prior entry %q: %v", mdp.ErrConfiguration, entry, err)
		}
		prior[s] += mass
	}
	return prior, nil
}

func (b BeliefConfig) ParsedSteps(m *grid.Model) ([]BeliefStep, error) {
	steps := make([]BeliefStep, 0, len(b.Steps))
	for _, entry := range b.Steps {
		dir, cell, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%w: belief step %q, want direction:row,col", mdp.ErrConfiguration, entry)
		}
		d, err := grid.ParseDirection(dir)
		if err != nil {
			return nil, err
		}
		y, err := openState(m, cell)
		if err != nil {
			return nil, err
		}
		steps = append(steps, BeliefStep{Action: d, Observation: y})
	}
	return steps, nil
}

func (b BeliefConfig) Options() []belief.Option {
	if b.PerSource {
		return []belief.Option{belief.WithPerSourceNormalization()}
	}
	return nil
}

type LearningConfig struct {
	// Method is one of qlearning, sarsa, tdlambda, mc or mc-off.
	Method     string  `mapstructure:"method"`
	Episodes   int     `mapstructure:"episodes"`
	MaxSteps   int     `mapstructure:"max_steps"`
	Start      string  `mapstructure:"start"`
	Alpha      float64 `mapstructure:"alpha"`
	Epsilon    float64 `mapstructure:"epsilon"`
	EveryVisit bool    `mapstructure:"every_visit"`
	Lambda     float64 `mapstructure:"lambda"`
	Eta        float64 `mapstructure:"eta"`
}

const (
	MethodQLearning = "qlearning"
	MethodSARSA     = "sarsa"
	MethodTDLambda  = "tdlambda"
	MethodMC        = "mc"
	MethodMCOff     = "mc-off"
)

func (l LearningConfig) Learning(m *grid.Model) (mdp.LearningConfig, error) {
	switch l.Method {
	case MethodQLearning, MethodSARSA, MethodTDLambda, MethodMC, MethodMCOff:
	default:
		return mdp.LearningConfig{}, fmt.Errorf("%w: learning.method %q", mdp.ErrConfiguration, l.Method)
	}
	start, err := openState(m, l.Start)
	if err != nil {
		return mdp.LearningConfig{}, err
	}
	return mdp.LearningConfig{
		Episodes:   l.Episodes,
		MaxSteps:   l.MaxSteps,
		Start:      start,
		Alpha:      l.Alpha,
		Epsilon:    l.Epsilon,
		EveryVisit: l.EveryVisit,
		Lambda:     l.Lambda,
		Eta:        l.Eta,
	}, nil
}
