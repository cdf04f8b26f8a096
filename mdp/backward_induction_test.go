package mdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switcher lets the control pick the next state directly.
type switcher struct {
	controls []Action
	pw       DiscretePdf[int]
	escape   bool
}

func newSwitcher() *switcher {
	return &switcher{controls: []Action{0, 1}, pw: Deterministic(0)}
}

func (s *switcher) Horizon() int                     { return 2 }
func (s *switcher) NumStates() int                   { return 2 }
func (s *switcher) Controls(int, State) []Action     { return s.controls }
func (s *switcher) Disturbance(int) DiscretePdf[int] { return s.pw }
func (s *switcher) TerminalCost(x State) float64     { return []float64{5, 0}[x] }

func (s *switcher) Next(_ int, _ State, u Action, _ int) State {
	if s.escape {
		return 2
	}
	return State(u)
}

func (s *switcher) StageCost(_ int, x State, u Action, _ int) float64 {
	return float64(x) + 0.5*float64(u)
}

func TestBackwardInductionMinimizes(t *testing.T) {
	res, err := BackwardInduction(newSwitcher())
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 0}, res.Values[2])
	assert.Equal(t, []float64{0.5, 1.5}, res.Values[1])
	assert.Equal(t, []Action{1, 1}, res.Policy[1])
	assert.Equal(t, []float64{0.5, 1.5}, res.Values[0])
	assert.Equal(t, []Action{0, 0}, res.Policy[0])
	assert.Equal(t, []Action{NoAction, NoAction}, res.Policy[2])
}

func TestBackwardInductionMaximizes(t *testing.T) {
	res, err := BackwardInduction(newSwitcher(), WithObjective(Maximize))
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, res.Values[1])
	assert.Equal(t, []float64{6.5, 7.5}, res.Values[0])
	assert.Equal(t, []Action{1, 1}, res.Policy[0])
}

func TestBackwardInductionErrors(t *testing.T) {
	sys := newSwitcher()
	sys.controls = nil
	_, err := BackwardInduction(sys)
	assert.ErrorIs(t, err, ErrNoFeasibleAction)

	sys = newSwitcher()
	sys.pw = DiscretePdf[int]{}
	sys.pw.Add(0, 0.5)
	_, err = BackwardInduction(sys)
	assert.ErrorIs(t, err, ErrConfiguration)

	sys = newSwitcher()
	sys.escape = true
	_, err = BackwardInduction(sys)
	assert.ErrorIs(t, err, ErrConfiguration)
}
