// Package inventory is the finite-horizon stock ordering problem solved by
// backward induction: each stage the manager orders u units, demand w is drawn,
// unmet demand is lost and charged, leftover stock is carried and charged.
package inventory

import (
	"fmt"
	"math"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

type Config struct {
	Capacity     int
	Horizon      int
	OrderCost    float64
	HoldingCost  float64
	ShortageCost float64
	TerminalCost float64
	// Demand[k] is the pmf of the demand w = 0, 1, ... observed at the end of stage k.
	Demand [][]float64
}

// Default is the four-stage, capacity three problem. Each demand row is
// rescaled to sum to one.
func Default() Config {
	return Config{
		Capacity:     3,
		Horizon:      4,
		OrderCost:    3,
		HoldingCost:  1,
		ShortageCost: 5,
		TerminalCost: 4,
		Demand: NormalizeRows([][]float64{
			{0.20, 0.25, 0.25, 0.10},
			{0.20, 0.25, 0.25, 0.40},
			{0.40, 0.25, 0.25, 0.10},
			{0.40, 0.25, 0.25, 0.40},
		}),
	}
}

// NormalizeRows returns a copy of rows with every positive-sum row scaled to one.
func NormalizeRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		total := 0.0
		for _, p := range row {
			total += p
		}
		out[i] = append([]float64(nil), row...)
		if total <= 0 {
			continue
		}
		for j := range out[i] {
			out[i][j] /= total
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d", mdp.ErrConfiguration, c.Capacity)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("%w: horizon %d", mdp.ErrConfiguration, c.Horizon)
	}
	for _, cost := range []float64{c.OrderCost, c.HoldingCost, c.ShortageCost, c.TerminalCost} {
		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			return fmt.Errorf("%w: cost %v", mdp.ErrConfiguration, cost)
		}
	}
	if len(c.Demand) != c.Horizon {
		return fmt.Errorf("%w: %d demand rows for horizon %d", mdp.ErrConfiguration, len(c.Demand), c.Horizon)
	}
	for k, row := range c.Demand {
		if _, err := mdp.IndexPdf(row); err != nil {
			return fmt.Errorf("stage %d demand: %w", k, err)
		}
	}
	return nil
}

// System adapts a Config to mdp.StageSystem. States are stock levels 0..Capacity
// and actions are order quantities.
type System struct {
	cfg    Config
	demand []mdp.DiscretePdf[int]
}

var _ mdp.StageSystem = (*System)(nil)

func NewSystem(cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &System{cfg: cfg, demand: make([]mdp.DiscretePdf[int], cfg.Horizon)}
	for k, row := range cfg.Demand {
		s.demand[k], _ = mdp.IndexPdf(row)
	}
	return s, nil
}

func (s *System) Horizon() int   { return s.cfg.Horizon }
func (s *System) NumStates() int { return s.cfg.Capacity + 1 }

// Controls allows any order that keeps stock within capacity.
func (s *System) Controls(_ int, x mdp.State) []mdp.Action {
	room := s.cfg.Capacity - int(x)
	out := make([]mdp.Action, 0, room+1)
	for u := 0; u <= room; u++ {
		out = append(out, mdp.Action(u))
	}
	return out
}

func (s *System) Disturbance(k int) mdp.DiscretePdf[int] {
	return s.demand[k]
}

func (s *System) Next(_ int, x mdp.State, u mdp.Action, w int) mdp.State {
	return mdp.State(max(0, int(x)+int(u)-w))
}

func (s *System) StageCost(_ int, x mdp.State, u mdp.Action, w int) float64 {
	shortage := max(0, w-(int(x)+int(u)))
	return s.cfg.OrderCost*float64(u) + s.cfg.HoldingCost*float64(x) + s.cfg.ShortageCost*float64(shortage)
}

func (s *System) TerminalCost(x mdp.State) float64 {
	return s.cfg.TerminalCost * float64(x)
}

// Solve runs backward induction, minimizing expected cost.
func Solve(cfg Config, opts ...mdp.Option) (*mdp.StageResult, error) {
	sys, err := NewSystem(cfg)
	if err != nil {
		return nil, err
	}
	return mdp.BackwardInduction(sys, opts...)
}
