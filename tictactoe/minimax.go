package tictactoe

import (
	"math"
	"math/rand"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

// OptimalPolicy is the exhaustive minimax solution for one player: the move to
// make at every reachable position where that player is to move.
type OptimalPolicy struct {
	player int
	moves  map[Board]mdp.Action
	values map[Board]float64
}

// Solve searches the whole game tree once, memoizing position values.
func Solve(player int) *OptimalPolicy {
	p := &OptimalPolicy{
		player: player,
		moves:  make(map[Board]mdp.Action),
		values: make(map[Board]float64),
	}
	p.search(Board{})
	return p
}

func (p *OptimalPolicy) search(b Board) float64 {
	if v, ok := p.values[b]; ok {
		return v
	}
	game := Game{}
	if b.Over() {
		v := game.Payoff(b, p.player)
		p.values[b] = v
		return v
	}

	mine := game.ToMove(b) == p.player
	best := math.Inf(1)
	if mine {
		best = math.Inf(-1)
	}
	bestMove := mdp.NoAction
	for _, a := range b.EmptySquares() {
		next, _ := b.Place(a)
		v := p.search(next)
		if (mine && v > best) || (!mine && v < best) {
			best, bestMove = v, a
		}
	}
	if mine {
		p.moves[b] = bestMove
	}
	p.values[b] = best
	return best
}

// Value is the minimax payoff of b for the solved player.
func (p *OptimalPolicy) Value(b Board) float64 {
	return p.search(b)
}

func (p *OptimalPolicy) Move(b Board) (mdp.Action, bool) {
	if b.Over() || (Game{}).ToMove(b) != p.player {
		return mdp.NoAction, false
	}
	p.search(b)
	a, ok := p.moves[b]
	return a, ok
}

func (p *OptimalPolicy) Mover() Mover {
	return func(b Board, rng *rand.Rand) mdp.Action {
		if a, ok := p.Move(b); ok {
			return a
		}
		return RandomMover(b, rng)
	}
}
