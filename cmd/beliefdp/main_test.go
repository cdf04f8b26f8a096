package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append(args, "--color=false", "--log-format=json"))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValueCommand(t *testing.T) {
	out, logs, err := run(t, "value")
	require.NoError(t, err)
	assert.Contains(t, out, "Values")
	assert.Contains(t, out, "Converged: true")
	assert.Contains(t, logs, `"run_id"`)
}

func TestPolicyCommandWritesChart(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "policy", "--charts-dir", dir, "--stationary")
	require.NoError(t, err)
	assert.Contains(t, out, "Policy")
	assert.FileExists(t, filepath.Join(dir, "policy_iteration.html"))
}

func TestBeliefCommand(t *testing.T) {
	out, _, err := run(t, "belief")
	require.NoError(t, err)
	assert.Contains(t, out, "Prior")
	assert.Contains(t, out, "After up, observed (0,2)")
	assert.Contains(t, out, "Most likely: (0,2)")
}

func TestInventoryAndLQRCommands(t *testing.T) {
	out, _, err := run(t, "inventory")
	require.NoError(t, err)
	assert.Contains(t, out, "Order quantity")

	out, _, err = run(t, "lqr")
	require.NoError(t, err)
	assert.Contains(t, out, "K0 =")
	assert.Contains(t, out, "Total cost:")
}

func TestSmallRunsFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
learning:
  method: sarsa
  episodes: 20
  max_steps: 30
tictactoe:
  episodes: 20
  max_iterations: 2
  eval_games: 10
`), 0o600))

	out, _, err := run(t, "learn", "--config", path, "--runs", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Greedy policy")

	out, _, err = run(t, "tictactoe", "--config", path, "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Against random:")
}

func TestBadConfig(t *testing.T) {
	_, _, err := run(t, "value", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = run(t, "value", "--log-level", "loud")
	assert.Error(t, err)
}

func TestLearnCommandChartsOptimalBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tdlambda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
learning:
  method: tdlambda
  episodes: 30
  max_steps: 50
  lambda: 0.5
  eta: 0.2
`), 0o600))
	dir := t.TempDir()

	out, _, err := run(t, "learn", "--config", path, "--charts-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Greedy policy")

	body, err := os.ReadFile(filepath.Join(dir, "learning_tdlambda.html"))
	require.NoError(t, err)
	assert.Contains(t, string(body), "optimal")
}
