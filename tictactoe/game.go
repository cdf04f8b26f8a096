package tictactoe

import (
	"fmt"
	"math/rand"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

// Player indices as seen by mdp.Game.
const (
	PlayerX = 0
	PlayerO = 1
)

func MarkOf(player int) Mark {
	if player == PlayerO {
		return O
	}
	return X
}

func PlayerOf(m Mark) (int, error) {
	switch m {
	case X:
		return PlayerX, nil
	case O:
		return PlayerO, nil
	}
	return 0, fmt.Errorf("%w: mark %v is not a player", mdp.ErrConfiguration, m)
}

// Payoffs of a finished game for the player being scored.
const (
	WinPayoff  = 1.0
	LossPayoff = -1.0
	DrawPayoff = 0.0
)

// Game implements mdp.Game[Board].
type Game struct{}

var _ mdp.Game[Board] = Game{}

func (Game) Start() Board { return Board{} }

func (Game) ToMove(b Board) int {
	if b.Turn() == O {
		return PlayerO
	}
	return PlayerX
}

func (Game) Moves(b Board) []mdp.Action {
	if b.Over() {
		return nil
	}
	return b.EmptySquares()
}

func (Game) Play(b Board, a mdp.Action) Board {
	next, _ := b.Place(a)
	return next
}

func (Game) Terminal(b Board) bool { return b.Over() }

func (Game) Payoff(b Board, player int) float64 {
	switch b.Winner() {
	case Empty:
		return DrawPayoff
	case MarkOf(player):
		return WinPayoff
	}
	return LossPayoff
}

// Mover picks a move for the side to play on a non-final board.
type Mover func(b Board, rng *rand.Rand) mdp.Action

func RandomMover(b Board, rng *rand.Rand) mdp.Action {
	moves := b.EmptySquares()
	return moves[rng.Intn(len(moves))]
}

// LearnerMover plays the learned policy of l.
func LearnerMover(l *mdp.GameLearner[Board]) Mover {
	return func(b Board, _ *rand.Rand) mdp.Action {
		a, err := l.Move(b)
		if err != nil {
			return mdp.NoAction
		}
		return a
	}
}

// Opponent adapts a Mover to the learner's opponent hook.
func Opponent(m Mover) mdp.OpponentFunc[Board] {
	return func(_ mdp.Game[Board], b Board, rng *rand.Rand) mdp.Action {
		return m(b, rng)
	}
}

type Tally struct {
	Wins   int
	Losses int
	Draws  int
}

func (t Tally) Games() int { return t.Wins + t.Losses + t.Draws }

func (t Tally) String() string {
	return fmt.Sprintf("%d wins, %d losses, %d draws", t.Wins, t.Losses, t.Draws)
}

// Match plays games between the mover of player and opponent, scoring from
// player's point of view.
func Match(player int, mover, opponent Mover, games int, rng *rand.Rand) (Tally, error) {
	var t Tally
	me := MarkOf(player)
	for g := 0; g < games; g++ {
		b := Board{}
		for !b.Over() {
			move := opponent
			if b.Turn() == me {
				move = mover
			}
			next, ok := b.Place(move(b, rng))
			if !ok {
				return t, fmt.Errorf("%w: illegal move on\n%v", mdp.ErrInvalidAction, b)
			}
			b = next
		}
		switch b.Winner() {
		case me:
			t.Wins++
		case Empty:
			t.Draws++
		default:
			t.Losses++
		}
	}
	return t, nil
}
