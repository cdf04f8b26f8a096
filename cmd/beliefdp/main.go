package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CodeStranger-Fred/beliefdp/internal/config"
	"github.com/CodeStranger-Fred/beliefdp/internal/logging"
	"github.com/CodeStranger-Fred/beliefdp/report"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	flags      config.Config

	cfg     *config.Config
	logger  zerolog.Logger
	rng     *rand.Rand
	runID   string
	printer *report.Printer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{}
	d := config.Default()

	rootCmd := &cobra.Command{
		Use:   "beliefdp",
		Short: "Dynamic programming and belief tracking on grid worlds",
		Long: `beliefdp solves Markov decision problems with dynamic programming.

It runs value and policy iteration on grid worlds, tracks a Bayesian belief
over the robot position, solves finite-horizon inventory and regulator
problems by backward induction, and learns tic-tac-toe by Monte-Carlo
policy iteration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (yaml, json or toml)")
	pf.StringVar(&a.flags.LogLevel, "log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.LogFormat, "log-format", d.LogFormat, "Log format (console, json)")
	pf.Int64Var(&a.flags.Seed, "seed", d.Seed, "Seed of the run's random source")
	pf.BoolVar(&a.flags.Color, "color", d.Color, "Colorize terminal output")
	pf.StringVar(&a.flags.ChartsDir, "charts-dir", d.ChartsDir, "Write HTML charts to this directory")

	rootCmd.AddCommand(
		a.valueCmd(),
		a.policyCmd(),
		a.beliefCmd(),
		a.learnCmd(),
		a.inventoryCmd(),
		a.tictactoeCmd(),
		a.lqrCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.applyFlags(cmd.Flags(), cfg)
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.runID = uuid.NewString()
	a.logger = logger.With().Str("run_id", a.runID).Str("command", cmd.Name()).Logger()
	a.rng = rand.New(rand.NewSource(cfg.Seed))
	a.printer = report.NewPrinter(cmd.OutOrStdout(), cfg.Color)

	a.logger.Debug().Int64("seed", cfg.Seed).Str("config", a.configPath).Msg("run configured")
	return nil
}

// applyFlags lets explicitly set flags win over file and environment values.
func (a *app) applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("log-level") {
		cfg.LogLevel = a.flags.LogLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = a.flags.LogFormat
	}
	if fs.Changed("seed") {
		cfg.Seed = a.flags.Seed
	}
	if fs.Changed("color") {
		cfg.Color = a.flags.Color
	}
	if fs.Changed("charts-dir") {
		cfg.ChartsDir = a.flags.ChartsDir
	}
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
