// Package config loads run configuration from file, environment and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

const EnvPrefix = "BELIEFDP"

// Config holds every knob of a beliefdp run
type Config struct {
	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Reproducibility and output
	Seed      int64  `mapstructure:"seed"`
	Color     bool   `mapstructure:"color"`
	ChartsDir string `mapstructure:"charts_dir"`

	Grid      GridConfig      `mapstructure:"grid"`
	Solver    SolverConfig    `mapstructure:"solver"`
	Belief    BeliefConfig    `mapstructure:"belief"`
	Learning  LearningConfig  `mapstructure:"learning"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	TicTacToe TicTacToeConfig `mapstructure:"tictactoe"`
	LQR       LQRConfig       `mapstructure:"lqr"`
}

type SolverConfig struct {
	Gamma         float64 `mapstructure:"gamma"`
	Epsilon       float64 `mapstructure:"epsilon"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Objective     string  `mapstructure:"objective"`
	ZeroInit      bool    `mapstructure:"zero_init"`
}

// Default returns the gridworld, inventory, tic-tac-toe and regulator problems
// the tool was built around.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		Seed:      1,
		Color:     true,
		Grid: GridConfig{
			Rewards: []string{
				"0 0 0 -1",
				"0 # 0 100",
				"0 0 0 0",
			},
			ActionNoise:         []float64{0.1, 0.8, 0.1},
			ObservationSelf:     0.6,
			ObservationNeighbor: 0.1,
			Terminals:           []string{"0,3", "1,3"},
		},
		Solver: SolverConfig{
			Gamma:         0.9,
			Epsilon:       mdp.DefaultEpsilon,
			MaxIterations: 500,
			Objective:     "max",
		},
		Belief: BeliefConfig{
			Prior: []string{"0,2=0.2", "0,3=0.3", "1,2=0.1", "1,3=0.4"},
			Steps: []string{"up:0,2"},
		},
		Learning: LearningConfig{
			Method:   "qlearning",
			Episodes: 500,
			MaxSteps: 100,
			Start:    "2,0",
			Alpha:    0.5,
			Epsilon:  0.1,
			Lambda:   0.7,
			Eta:      0.3,
		},
		Inventory: defaultInventory(),
		TicTacToe: TicTacToeConfig{
			Player:           "X",
			Episodes:         1000,
			Gamma:            0.9,
			MaxIterations:    100,
			PliesPerDecision: 2,
			Response:         "average",
			Opponent:         "random",
			EvalGames:        1000,
		},
		LQR: defaultLQR(),
	}
}

// Validate checks the settings that are not checked by the domain constructors.
func (c *Config) Validate() error {
	if c.Solver.Gamma < 0 || c.Solver.Gamma >= 1 {
		return fmt.Errorf("%w: solver.gamma %v must be in [0,1)", mdp.ErrConfiguration, c.Solver.Gamma)
	}
	if c.Solver.Epsilon <= 0 {
		return fmt.Errorf("%w: solver.epsilon must be positive", mdp.ErrConfiguration)
	}
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("%w: solver.max_iterations must be positive", mdp.ErrConfiguration)
	}
	if _, err := mdp.ParseObjective(c.Solver.Objective); err != nil {
		return err
	}
	if len(c.Grid.Rewards) == 0 {
		return fmt.Errorf("%w: grid.rewards is required", mdp.ErrConfiguration)
	}
	return nil
}

// Options translates the solver settings into solver options.
func (s SolverConfig) Options() []mdp.Option {
	opts := []mdp.Option{
		mdp.WithEpsilon(s.Epsilon),
		mdp.WithMaxIterations(s.MaxIterations),
	}
	if s.ZeroInit {
		opts = append(opts, mdp.WithZeroInit())
	}
	return opts
}

func (s SolverConfig) ParsedObjective() mdp.Objective {
	obj, _ := mdp.ParseObjective(s.Objective)
	return obj
}

// Load layers, from lowest to highest precedence, Default(), the optional file
// at path (any format viper reads) and BELIEFDP_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key, so that a value from the file or the
// environment replaces the default as a whole, slices included.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("color", d.Color)
	v.SetDefault("charts_dir", d.ChartsDir)

	v.SetDefault("grid.rewards", d.Grid.Rewards)
	v.SetDefault("grid.action_noise", d.Grid.ActionNoise)
	v.SetDefault("grid.observation_self", d.Grid.ObservationSelf)
	v.SetDefault("grid.observation_neighbor", d.Grid.ObservationNeighbor)
	v.SetDefault("grid.terminals", d.Grid.Terminals)

	v.SetDefault("solver.gamma", d.Solver.Gamma)
	v.SetDefault("solver.epsilon", d.Solver.Epsilon)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("solver.objective", d.Solver.Objective)
	v.SetDefault("solver.zero_init", d.Solver.ZeroInit)

	v.SetDefault("belief.prior", d.Belief.Prior)
	v.SetDefault("belief.steps", d.Belief.Steps)
	v.SetDefault("belief.per_source", d.Belief.PerSource)

	v.SetDefault("learning.method", d.Learning.Method)
	v.SetDefault("learning.episodes", d.Learning.Episodes)
	v.SetDefault("learning.max_steps", d.Learning.MaxSteps)
	v.SetDefault("learning.start", d.Learning.Start)
	v.SetDefault("learning.alpha", d.Learning.Alpha)
	v.SetDefault("learning.epsilon", d.Learning.Epsilon)
	v.SetDefault("learning.every_visit", d.Learning.EveryVisit)
	v.SetDefault("learning.lambda", d.Learning.Lambda)
	v.SetDefault("learning.eta", d.Learning.Eta)

	v.SetDefault("inventory.capacity", d.Inventory.Capacity)
	v.SetDefault("inventory.horizon", d.Inventory.Horizon)
	v.SetDefault("inventory.order_cost", d.Inventory.OrderCost)
	v.SetDefault("inventory.holding_cost", d.Inventory.HoldingCost)
	v.SetDefault("inventory.shortage_cost", d.Inventory.ShortageCost)
	v.SetDefault("inventory.terminal_cost", d.Inventory.TerminalCost)
	v.SetDefault("inventory.demand", d.Inventory.Demand)
	v.SetDefault("inventory.normalize_demand", d.Inventory.NormalizeDemand)

	v.SetDefault("tictactoe.player", d.TicTacToe.Player)
	v.SetDefault("tictactoe.episodes", d.TicTacToe.Episodes)
	v.SetDefault("tictactoe.gamma", d.TicTacToe.Gamma)
	v.SetDefault("tictactoe.max_iterations", d.TicTacToe.MaxIterations)
	v.SetDefault("tictactoe.plies_per_decision", d.TicTacToe.PliesPerDecision)
	v.SetDefault("tictactoe.every_visit", d.TicTacToe.EveryVisit)
	v.SetDefault("tictactoe.response", d.TicTacToe.Response)
	v.SetDefault("tictactoe.opponent", d.TicTacToe.Opponent)
	v.SetDefault("tictactoe.eval_games", d.TicTacToe.EvalGames)

	v.SetDefault("lqr.a", d.LQR.A)
	v.SetDefault("lqr.b", d.LQR.B)
	v.SetDefault("lqr.q", d.LQR.Q)
	v.SetDefault("lqr.r", d.LQR.R)
	v.SetDefault("lqr.qn", d.LQR.QN)
	v.SetDefault("lqr.horizon", d.LQR.Horizon)
	v.SetDefault("lqr.x0", d.LQR.X0)
}
