package config

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/CodeStranger-Fred/beliefdp/inventory"
	"github.com/CodeStranger-Fred/beliefdp/lqr"
	"github.com/CodeStranger-Fred/beliefdp/mdp"
	"github.com/CodeStranger-Fred/beliefdp/tictactoe"
)

type InventoryConfig struct {
	Capacity     int         `mapstructure:"capacity"`
	Horizon      int         `mapstructure:"horizon"`
	OrderCost    float64     `mapstructure:"order_cost"`
	HoldingCost  float64     `mapstructure:"holding_cost"`
	ShortageCost float64     `mapstructure:"shortage_cost"`
	TerminalCost float64     `mapstructure:"terminal_cost"`
	Demand       [][]float64 `mapstructure:"demand"`
	// NormalizeDemand rescales each demand row to sum to one.
	NormalizeDemand bool `mapstructure:"normalize_demand"`
}

func defaultInventory() InventoryConfig {
	d := inventory.Default()
	return InventoryConfig{
		Capacity:     d.Capacity,
		Horizon:      d.Horizon,
		OrderCost:    d.OrderCost,
		HoldingCost:  d.HoldingCost,
		ShortageCost: d.ShortageCost,
		TerminalCost: d.TerminalCost,
		Demand: [][]float64{
			{0.20, 0.25, 0.25, 0.10},
			{0.20, 0.25, 0.25, 0.40},
			{0.40, 0.25, 0.25, 0.10},
			{0.40, 0.25, 0.25, 0.40},
		},
		NormalizeDemand: true,
	}
}

func (c InventoryConfig) Inventory() inventory.Config {
	demand := c.Demand
	if c.NormalizeDemand {
		demand = inventory.NormalizeRows(demand)
	}
	return inventory.Config{
		Capacity:     c.Capacity,
		Horizon:      c.Horizon,
		OrderCost:    c.OrderCost,
		HoldingCost:  c.HoldingCost,
		ShortageCost: c.ShortageCost,
		TerminalCost: c.TerminalCost,
		Demand:       demand,
	}
}

type TicTacToeConfig struct {
	// Player is the learner's mark, X or O.
	Player           string  `mapstructure:"player"`
	Episodes         int     `mapstructure:"episodes"`
	Gamma            float64 `mapstructure:"gamma"`
	MaxIterations    int     `mapstructure:"max_iterations"`
	PliesPerDecision int     `mapstructure:"plies_per_decision"`
	EveryVisit       bool    `mapstructure:"every_visit"`
	// Response is how improvement models the opponent: average or worst.
	Response string `mapstructure:"response"`
	// Opponent plays against the learner in training and evaluation: random or optimal.
	Opponent  string `mapstructure:"opponent"`
	EvalGames int    `mapstructure:"eval_games"`
}

func (t TicTacToeConfig) Learner() (int, error) {
	switch strings.ToUpper(t.Player) {
	case "X":
		return tictactoe.PlayerX, nil
	case "O":
		return tictactoe.PlayerO, nil
	}
	return 0, fmt.Errorf("%w: tictactoe.player %q", mdp.ErrConfiguration, t.Player)
}

func (t TicTacToeConfig) Game() (mdp.GameConfig, error) {
	learner, err := t.Learner()
	if err != nil {
		return mdp.GameConfig{}, err
	}
	var response mdp.ResponseModel
	switch strings.ToLower(t.Response) {
	case "", "average":
		response = mdp.AverageResponse
	case "worst":
		response = mdp.WorstCaseResponse
	default:
		return mdp.GameConfig{}, fmt.Errorf("%w: tictactoe.response %q", mdp.ErrConfiguration, t.Response)
	}
	return mdp.GameConfig{
		Learner:          learner,
		Episodes:         t.Episodes,
		Gamma:            t.Gamma,
		MaxIterations:    t.MaxIterations,
		PliesPerDecision: t.PliesPerDecision,
		EveryVisit:       t.EveryVisit,
		Response:         response,
	}, nil
}

// OpponentMover returns the mover facing a learner playing as player.
func (t TicTacToeConfig) OpponentMover(player int) (tictactoe.Mover, error) {
	switch strings.ToLower(t.Opponent) {
	case "", "random":
		return tictactoe.RandomMover, nil
	case "optimal":
		return tictactoe.Solve(1 - player).Mover(), nil
	}
	return nil, fmt.Errorf("%w: tictactoe.opponent %q", mdp.ErrConfiguration, t.Opponent)
}

type LQRConfig struct {
	A       [][]float64 `mapstructure:"a"`
	B       [][]float64 `mapstructure:"b"`
	Q       [][]float64 `mapstructure:"q"`
	R       [][]float64 `mapstructure:"r"`
	QN      [][]float64 `mapstructure:"qn"`
	Horizon int         `mapstructure:"horizon"`
	X0      []float64   `mapstructure:"x0"`
}

func defaultLQR() LQRConfig {
	return LQRConfig{
		A:       [][]float64{{1, 2}, {-4, 1}},
		B:       [][]float64{{1, 2}, {3, 2}},
		Q:       [][]float64{{1, 0}, {0, 0}},
		R:       [][]float64{{1, 0}, {0, 2}},
		Horizon: 9,
		X0:      []float64{5, 10},
	}
}

func (l LQRConfig) Problem() (lqr.Problem, error) {
	p := lqr.Problem{Horizon: l.Horizon}
	var err error
	for _, m := range []struct {
		name string
		rows [][]float64
		dst  **mat.Dense
	}{
		{"a", l.A, &p.A},
		{"b", l.B, &p.B},
		{"q", l.Q, &p.Q},
		{"r", l.R, &p.R},
	} {
		if *m.dst, err = dense(m.rows); err != nil {
			return lqr.Problem{}, fmt.Errorf("lqr.%s: %w", m.name, err)
		}
	}
	if len(l.QN) > 0 {
		if p.QN, err = dense(l.QN); err != nil {
			return lqr.Problem{}, fmt.Errorf("lqr.qn: %w", err)
		}
	}
	return p, nil
}

func dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", mdp.ErrConfiguration)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", mdp.ErrConfiguration, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
