package main

import (
	"errors"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/spf13/cobra"

	"github.com/CodeStranger-Fred/beliefdp/belief"
	"github.com/CodeStranger-Fred/beliefdp/grid"
	"github.com/CodeStranger-Fred/beliefdp/internal/config"
	"github.com/CodeStranger-Fred/beliefdp/inventory"
	"github.com/CodeStranger-Fred/beliefdp/lqr"
	"github.com/CodeStranger-Fred/beliefdp/mdp"
	"github.com/CodeStranger-Fred/beliefdp/report"
	"github.com/CodeStranger-Fred/beliefdp/tictactoe"
)

func (a *app) gridMDP() (*grid.Oracle, *mdp.MDP, error) {
	m, err := a.cfg.Grid.Model()
	if err != nil {
		return nil, nil, err
	}
	oracle := grid.NewOracle(m)
	return oracle, oracle.MDP(a.cfg.Solver.Gamma, a.cfg.Solver.ParsedObjective()), nil
}

func (a *app) solverOptions() []mdp.Option {
	return append(a.cfg.Solver.Options(), mdp.WithLogger(a.logger))
}

// chart writes the charts when a charts directory is configured.
func (a *app) chart(name string, lines ...*charts.Line) error {
	if a.cfg.ChartsDir == "" {
		return nil
	}
	path, err := report.WriteHTML(a.cfg.ChartsDir, name, lines...)
	if err != nil {
		return err
	}
	a.logger.Info().Str("path", path).Msg("chart written")
	return nil
}

func (a *app) subtitle() string {
	return "run " + a.runID
}

func (a *app) printResult(solver string, oracle *grid.Oracle, res *mdp.Result) {
	a.logger.Info().Str("solver", solver).Int("iterations", res.Iterations).Bool("converged", res.Converged).Msg("grid solved")
	a.printer.ValueGrid("Values", oracle.Model(), res.Values)
	a.printer.PolicyGrid("Policy", oracle.Model(), res.Policy)
	a.printer.Line("Iterations", res.Iterations)
	a.printer.Line("Converged", res.Converged)
}

func (a *app) valueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "value",
		Short: "Solve the grid world by value iteration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			oracle, m, err := a.gridMDP()
			if err != nil {
				return err
			}
			res, err := mdp.ValueIteration(m, a.solverOptions()...)
			if err != nil {
				return err
			}
			a.printResult("value_iteration", oracle, res)
			return a.chart("value_iteration", report.LineChart("Value iteration", a.subtitle(),
				report.Series{Name: "max |ΔW|", Values: res.Deltas}))
		},
	}
}

func (a *app) policyCmd() *cobra.Command {
	var stationary bool
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Solve the grid world by policy iteration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			oracle, m, err := a.gridMDP()
			if err != nil {
				return err
			}
			res, err := mdp.PolicyIteration(m, a.solverOptions()...)
			if err != nil {
				return err
			}
			a.printResult("policy_iteration", oracle, res)
			if stationary {
				a.printStationary(oracle, m, res.Policy)
			}
			return a.chart("policy_iteration", report.LineChart("Policy iteration", a.subtitle(),
				report.Series{Name: "changed states", Values: res.Deltas}))
		},
	}
	cmd.Flags().BoolVar(&stationary, "stationary", false, "Also print the stationary distribution under the policy")
	return cmd
}

// printStationary is best effort: chains with several absorbing states have
// no unique stationary distribution.
func (a *app) printStationary(oracle *grid.Oracle, m *mdp.MDP, policy mdp.PolicyTable) {
	chain, err := mdp.InducedChain(m, policy)
	if err == nil {
		var pi []float64
		if pi, err = mdp.Stationary(chain); err == nil {
			a.printer.BeliefGrid("Stationary distribution", oracle.Model(), pi)
			return
		}
	}
	a.logger.Warn().Err(err).Msg("no stationary distribution")
}

func (a *app) beliefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "belief",
		Short: "Track the robot position from actions and noisy observations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			oracle, _, err := a.gridMDP()
			if err != nil {
				return err
			}
			model := oracle.Model()
			prior, err := a.cfg.Belief.PriorBelief(model)
			if err != nil {
				return err
			}
			steps, err := a.cfg.Belief.ParsedSteps(model)
			if err != nil {
				return err
			}
			opts := append(a.cfg.Belief.Options(), belief.WithLogger(a.logger))
			tracker, err := belief.NewTracker(oracle, prior, opts...)
			if err != nil {
				return err
			}

			a.printer.BeliefGrid("Prior", model, tracker.Belief())
			for i, step := range steps {
				b, err := tracker.Update(step.Action.Action(), step.Observation)
				if errors.Is(err, belief.ErrInconsistentEvidence) {
					a.logger.Warn().Int("step", i).Stringer("action", step.Action).
						Stringer("observed", model.Cell(step.Observation)).
						Msg("observation impossible under the current belief, keeping it")
					continue
				}
				if err != nil {
					return err
				}
				title := fmt.Sprintf("After %v, observed %v", step.Action, model.Cell(step.Observation))
				a.printer.BeliefGrid(title, model, b)
			}
			a.printer.Line("Most likely", model.Cell(tracker.Belief().MostLikely()))
			return nil
		},
	}
}

func (a *app) learnCmd() *cobra.Command {
	var (
		runs   int
		window int
	)
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn a grid policy by temporal-difference, TD(λ) or Monte-Carlo control",
		RunE: func(cmd *cobra.Command, _ []string) error {
			oracle, m, err := a.gridMDP()
			if err != nil {
				return err
			}
			cfg, err := a.cfg.Learning.Learning(oracle.Model())
			if err != nil {
				return err
			}
			var learner mdp.Learner
			switch a.cfg.Learning.Method {
			case config.MethodQLearning:
				learner = mdp.TDOffPolicyQLearning
			case config.MethodSARSA:
				learner = mdp.TDOnPolicySARSA
			case config.MethodTDLambda:
				learner = mdp.TDLambda
			case config.MethodMC:
				learner = mdp.MCOnPolicyControl
			case config.MethodMCOff:
				learner = mdp.MCOffPolicyControl
			}

			avg, err := mdp.RunRepeatedly(a.cfg.Learning.Method, m, learner, cfg, runs, a.cfg.Seed)
			if err != nil {
				return err
			}
			a.logger.Info().Str("method", avg.Name).Int("runs", runs).Int("episodes", cfg.Episodes).Msg("learning finished")

			q := avg.Last.Q
			a.printer.ValueGrid("Learned values", oracle.Model(), q.StateValues())
			a.printer.PolicyGrid("Greedy policy", oracle.Model(), q.Policy())

			optimal, err := a.optimalRewards(m, cfg)
			if err != nil {
				return err
			}
			return a.chart("learning_"+avg.Name, report.LineChart("Reward per episode", a.subtitle(),
				report.Series{Name: avg.Name, Values: avg.Rewards},
				report.Series{Name: fmt.Sprintf("%s (avg %d)", avg.Name, window), Values: report.MovingAverage(avg.Rewards, window)},
				report.Series{Name: "optimal", Values: optimal},
			))
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 1, "Independent training runs to average")
	cmd.Flags().IntVar(&window, "window", 20, "Moving average window of the reward chart")
	return cmd
}

// optimalRewards rolls out the value iteration policy as the learners' baseline.
func (a *app) optimalRewards(m *mdp.MDP, cfg mdp.LearningConfig) ([]float64, error) {
	res, err := mdp.ValueIteration(m, a.solverOptions()...)
	if err != nil {
		return nil, err
	}
	rewards, err := mdp.RolloutRewards(m, res.Policy, cfg, a.rng)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Float64("first_episode", rewards[0]).Msg("optimal baseline rolled out")
	return rewards, nil
}

func (a *app) inventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Solve the finite-horizon inventory problem by backward induction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := inventory.Solve(a.cfg.Inventory.Inventory(), mdp.WithLogger(a.logger))
			if err != nil {
				return err
			}
			a.printer.StageValues("Expected cost to go", res.Values)
			a.printer.StagePolicy("Order quantity", res.Policy)

			series := make([]report.Series, 0, len(res.Values[0]))
			for x := range res.Values[0] {
				values := make([]float64, len(res.Values))
				for k := range res.Values {
					values[k] = res.Values[k][x]
				}
				series = append(series, report.Series{Name: fmt.Sprintf("x=%d", x), Values: values})
			}
			return a.chart("inventory", report.LineChart("Inventory cost to go by stage", a.subtitle(), series...))
		},
	}
}

func (a *app) tictactoeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tictactoe",
		Short: "Learn tic-tac-toe by Monte-Carlo policy iteration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := a.cfg.TicTacToe
			gcfg, err := t.Game()
			if err != nil {
				return err
			}
			opponent, err := t.OpponentMover(gcfg.Learner)
			if err != nil {
				return err
			}
			learner, err := mdp.NewGameLearner[tictactoe.Board](tictactoe.Game{}, gcfg, a.rng,
				mdp.WithOpponent(tictactoe.Opponent(opponent)),
				mdp.WithGameLogger[tictactoe.Board](a.logger),
			)
			if err != nil {
				return err
			}

			res, err := learner.Train()
			if err != nil {
				return err
			}
			a.printer.Line("Iterations", res.Iterations)
			a.printer.Line("Converged", res.Converged)
			a.printer.Line("Value of the empty board", learner.Value(tictactoe.Board{}))

			tally, err := tictactoe.Match(gcfg.Learner, tictactoe.LearnerMover(learner), opponent, t.EvalGames, a.rng)
			if err != nil {
				return err
			}
			a.printer.Line("Against "+t.Opponent, tally)
			a.logger.Info().Int("wins", tally.Wins).Int("losses", tally.Losses).Int("draws", tally.Draws).Msg("evaluation finished")

			return a.chart("tictactoe", report.LineChart("Mean payoff per iteration", a.subtitle(),
				report.Series{Name: "mean payoff", Values: res.MeanPayoff}))
		},
	}
}

func (a *app) lqrCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lqr",
		Short: "Solve the finite-horizon linear quadratic regulator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.cfg.LQR.Problem()
			if err != nil {
				return err
			}
			sol, err := lqr.Solve(p)
			if err != nil {
				return err
			}
			a.printer.Matrix("K0", sol.K[0])
			a.printer.Matrix("P0", sol.P[0])

			traj, err := sol.Rollout(a.cfg.LQR.X0)
			if err != nil {
				return err
			}
			cost, err := sol.Cost(a.cfg.LQR.X0)
			if err != nil {
				return err
			}
			a.printer.Line("Total cost", traj.Total())
			a.printer.Line("Riccati cost", cost)
			return a.chart("lqr", report.LineChart("Regulator cost", a.subtitle(),
				report.Series{Name: "stage cost", Values: traj.StageCosts},
				report.Series{Name: "cost to go", Values: traj.CostToGo},
			))
		},
	}
}
