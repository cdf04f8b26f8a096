package tictactoe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

func board(t *testing.T, s string) Board {
	t.Helper()
	b, ok := ParseBoard(s)
	require.True(t, ok, "bad board %q", s)
	return b
}

func TestWinnerAndTurn(t *testing.T) {
	b := board(t, "XXX OO. ...")
	assert.Equal(t, X, b.Winner())
	assert.True(t, b.Over())

	b = board(t, "XOX XOO OXX")
	assert.Equal(t, Empty, b.Winner())
	assert.True(t, b.Full())

	assert.Equal(t, X, Board{}.Turn())
	assert.Equal(t, O, board(t, "X.. ... ...").Turn())

	_, ok := board(t, "X.. ... ...").Place(0)
	assert.False(t, ok)
	_, ok = board(t, "XXX OO. ...").Place(8)
	assert.False(t, ok)

	_, ok = ParseBoard("XX")
	assert.False(t, ok)
}

func TestPayoff(t *testing.T) {
	g := Game{}
	won := board(t, "XXX OO. ...")
	assert.Equal(t, WinPayoff, g.Payoff(won, PlayerX))
	assert.Equal(t, LossPayoff, g.Payoff(won, PlayerO))
	assert.Equal(t, DrawPayoff, g.Payoff(board(t, "XOX XOO OXX"), PlayerX))
}

func TestEnumerateStates(t *testing.T) {
	states := mdp.EnumerateStates[Board](Game{}, PlayerX)
	require.NotEmpty(t, states)
	assert.Equal(t, Board{}, states[0])

	seen := map[Board]bool{}
	for _, s := range states {
		assert.False(t, seen[s], "duplicate\n%v", s)
		seen[s] = true
		assert.False(t, s.Over())
		assert.Equal(t, X, s.Turn())
	}

	for _, s := range mdp.EnumerateStates[Board](Game{}, PlayerO) {
		assert.Equal(t, O, s.Turn())
	}
}

func TestOptimalPolicy(t *testing.T) {
	x := Solve(PlayerX)
	assert.Equal(t, 0.0, x.Value(Board{}))

	a, ok := x.Move(board(t, "XX. OO. ..."))
	require.True(t, ok)
	assert.Equal(t, mdp.Action(2), a)

	_, ok = x.Move(board(t, "X.. ... ..."))
	assert.False(t, ok, "not X's turn")

	o := Solve(PlayerO)
	rng := rand.New(rand.NewSource(7))

	tally, err := Match(PlayerX, x.Mover(), o.Mover(), 3, rng)
	require.NoError(t, err)
	assert.Equal(t, 3, tally.Draws)

	tally, err = Match(PlayerO, o.Mover(), RandomMover, 200, rng)
	require.NoError(t, err)
	assert.Zero(t, tally.Losses)
	assert.Equal(t, 200, tally.Games())
}

func TestLearnerTakesImmediateWin(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	l, err := mdp.NewGameLearner[Board](Game{}, mdp.GameConfig{
		Learner:          PlayerX,
		Episodes:         10,
		Gamma:            0.9,
		MaxIterations:    1,
		PliesPerDecision: 2,
	}, rng)
	require.NoError(t, err)

	l.Improve()
	win := board(t, "XX. OO. ...")
	a, ok := l.Policy(win)
	require.True(t, ok)
	assert.Equal(t, mdp.Action(2), a)
}

func TestLearnerBeatsRandomOpponent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l, err := mdp.NewGameLearner[Board](Game{}, mdp.GameConfig{
		Learner:          PlayerX,
		Episodes:         2000,
		Gamma:            0.9,
		MaxIterations:    4,
		PliesPerDecision: 2,
	}, rng, mdp.WithOpponent(Opponent(RandomMover)))
	require.NoError(t, err)

	res, err := l.Train()
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 4)
	assert.Len(t, res.MeanPayoff, res.Iterations)

	tally, err := Match(PlayerX, LearnerMover(l), RandomMover, 500, rng)
	require.NoError(t, err)
	assert.Greater(t, tally.Wins, tally.Losses)
}
