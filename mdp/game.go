package mdp

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
)

// Game is a deterministic turn-taking game whose positions are usable as map keys.
type Game[S comparable] interface {
	Start() S
	// ToMove reports the index of the player about to move.
	ToMove(S) int
	Moves(S) []Action
	Play(S, Action) S
	Terminal(S) bool
	// Payoff is the terminal reward of a position for the given player.
	Payoff(S, int) float64
}

type ResponseModel int

const (
	// AverageResponse assumes the opponent picks uniformly among its moves.
	AverageResponse ResponseModel = iota
	// WorstCaseResponse assumes the opponent picks the move worst for the learner.
	WorstCaseResponse
)

// OpponentFunc chooses the move of a non-learning player.
type OpponentFunc[S comparable] func(game Game[S], s S, rng *rand.Rand) Action

func UniformOpponent[S comparable](game Game[S], s S, rng *rand.Rand) Action {
	moves := game.Moves(s)
	return moves[rng.Intn(len(moves))]
}

type GameConfig struct {
	Learner       int
	Episodes      int
	Gamma         float64
	MaxIterations int
	// PliesPerDecision is the number of plies between two consecutive decisions
	// of the learner; the return is discounted by Gamma^PliesPerDecision per decision.
	PliesPerDecision int
	EveryVisit       bool
	Response         ResponseModel
}

func (c GameConfig) check() error {
	if c.Episodes <= 0 {
		return fmt.Errorf("%w: episodes %d", ErrConfiguration, c.Episodes)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("%w: gamma %v outside [0,1]", ErrConfiguration, c.Gamma)
	}
	if c.PliesPerDecision <= 0 {
		return fmt.Errorf("%w: plies per decision %d", ErrConfiguration, c.PliesPerDecision)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations %d", ErrConfiguration, c.MaxIterations)
	}
	return nil
}

// EnumerateStates walks every position reachable from the start with a FIFO
// worklist and returns, in discovery order, the non-terminal ones where player
// is to move.
func EnumerateStates[S comparable](game Game[S], player int) []S {
	start := game.Start()
	visited := map[S]bool{start: true}
	queue := []S{start}
	var states []S
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if game.Terminal(s) {
			continue
		}
		if game.ToMove(s) == player {
			states = append(states, s)
		}
		for _, a := range game.Moves(s) {
			next := game.Play(s, a)
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return states
}

// GameLearner runs Monte-Carlo policy iteration for one player of a Game.
type GameLearner[S comparable] struct {
	game     Game[S]
	cfg      GameConfig
	rng      *rand.Rand
	opponent OpponentFunc[S]
	logger   zerolog.Logger

	states []S
	index  map[S]int
	values []float64
	policy []Action
}

type GameOption[S comparable] func(*GameLearner[S])

func WithOpponent[S comparable](f OpponentFunc[S]) GameOption[S] {
	return func(l *GameLearner[S]) { l.opponent = f }
}

func WithGameLogger[S comparable](logger zerolog.Logger) GameOption[S] {
	return func(l *GameLearner[S]) { l.logger = logger }
}

// NewGameLearner enumerates the learner's states and draws a random initial policy.
func NewGameLearner[S comparable](game Game[S], cfg GameConfig, rng *rand.Rand, opts ...GameOption[S]) (*GameLearner[S], error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfiguration)
	}
	l := &GameLearner[S]{
		game:     game,
		cfg:      cfg,
		rng:      rng,
		opponent: UniformOpponent[S],
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.states = EnumerateStates(game, cfg.Learner)
	l.index = make(map[S]int, len(l.states))
	l.values = make([]float64, len(l.states))
	l.policy = make([]Action, len(l.states))
	for i, s := range l.states {
		l.index[s] = i
		moves := game.Moves(s)
		if len(moves) == 0 {
			return nil, fmt.Errorf("%w: non-terminal position without moves", ErrNoFeasibleAction)
		}
		l.policy[i] = moves[rng.Intn(len(moves))]
	}
	return l, nil
}

func (l *GameLearner[S]) States() []S {
	return append([]S(nil), l.states...)
}

func (l *GameLearner[S]) Value(s S) float64 {
	if i, ok := l.index[s]; ok {
		return l.values[i]
	}
	return 0
}

func (l *GameLearner[S]) Policy(s S) (Action, bool) {
	if i, ok := l.index[s]; ok {
		return l.policy[i], true
	}
	return NoAction, false
}

// Move returns the learner's move at s, falling back to a random legal move for
// positions outside the enumerated set.
func (l *GameLearner[S]) Move(s S) (Action, error) {
	if a, ok := l.Policy(s); ok {
		return a, nil
	}
	moves := l.game.Moves(s)
	if len(moves) == 0 {
		return NoAction, fmt.Errorf("%w: position has no moves", ErrNoFeasibleAction)
	}
	return moves[l.rng.Intn(len(moves))], nil
}

func (l *GameLearner[S]) decisionDiscount() float64 {
	return math.Pow(l.cfg.Gamma, float64(l.cfg.PliesPerDecision))
}

// Evaluate replaces the value table with Monte-Carlo averages over cfg.Episodes
// simulated games. It returns the learner's mean terminal payoff, or
// ErrInvalidAction when the opponent plays a move outside Moves.
func (l *GameLearner[S]) Evaluate() (float64, error) {
	sums := make([]float64, len(l.states))
	counts := make([]int, len(l.states))
	discount := l.decisionDiscount()
	payoffs := 0.0

	for ep := 0; ep < l.cfg.Episodes; ep++ {
		s := l.game.Start()
		var decisions []int
		for !l.game.Terminal(s) {
			var move Action
			if l.game.ToMove(s) == l.cfg.Learner {
				i, ok := l.index[s]
				if !ok {
					moves := l.game.Moves(s)
					move = moves[l.rng.Intn(len(moves))]
				} else {
					move = l.policy[i]
					decisions = append(decisions, i)
				}
			} else {
				move = l.opponent(l.game, s, l.rng)
				if !legal(l.game.Moves(s), move) {
					return 0, fmt.Errorf("%w: opponent played %d", ErrInvalidAction, move)
				}
			}
			s = l.game.Play(s, move)
		}

		payoff := l.game.Payoff(s, l.cfg.Learner)
		payoffs += payoff
		g := payoff
		// Walking backwards, the last write per state is its first visit.
		firstReturn := map[int]float64{}
		for j := len(decisions) - 1; j >= 0; j-- {
			i := decisions[j]
			if l.cfg.EveryVisit {
				sums[i] += g
				counts[i]++
			} else {
				firstReturn[i] = g
			}
			g *= discount
		}
		for i, ret := range firstReturn {
			sums[i] += ret
			counts[i]++
		}
	}

	for i := range l.values {
		if counts[i] > 0 {
			l.values[i] = sums[i] / float64(counts[i])
		} else {
			l.values[i] = 0
		}
	}
	return payoffs / float64(l.cfg.Episodes), nil
}

func legal(moves []Action, a Action) bool {
	for _, m := range moves {
		if m == a {
			return true
		}
	}
	return false
}

// successorValue values a position reached after the learner's move, following
// opponent plies until the learner is to move again or the game ends.
func (l *GameLearner[S]) successorValue(s S) float64 {
	if l.game.Terminal(s) {
		return l.game.Payoff(s, l.cfg.Learner)
	}
	if l.game.ToMove(s) == l.cfg.Learner {
		return l.decisionDiscount() * l.Value(s)
	}
	moves := l.game.Moves(s)
	if l.cfg.Response == WorstCaseResponse {
		worst := math.Inf(1)
		for _, a := range moves {
			worst = math.Min(worst, l.successorValue(l.game.Play(s, a)))
		}
		return worst
	}
	total := 0.0
	for _, a := range moves {
		total += l.successorValue(l.game.Play(s, a))
	}
	return total / float64(len(moves))
}

// Improve makes the policy greedy with respect to the current values and reports
// how many states changed their move.
func (l *GameLearner[S]) Improve() int {
	changed := 0
	for i, s := range l.states {
		moves := l.game.Moves(s)
		q := make([]float64, len(moves))
		for j, a := range moves {
			q[j] = l.successorValue(l.game.Play(s, a))
		}
		best := moves[argopt(Maximize, q)]
		if best != l.policy[i] {
			l.policy[i] = best
			changed++
		}
	}
	return changed
}

type TrainResult struct {
	Iterations int
	Converged  bool
	// MeanPayoff holds the learner's average payoff seen during each evaluation.
	MeanPayoff []float64
}

// Train alternates evaluation and improvement until no state changes its move
// or the iteration cap is reached.
func (l *GameLearner[S]) Train() (TrainResult, error) {
	var res TrainResult
	for res.Iterations < l.cfg.MaxIterations {
		payoff, err := l.Evaluate()
		if err != nil {
			return res, err
		}
		changed := l.Improve()
		res.Iterations++
		res.MeanPayoff = append(res.MeanPayoff, payoff)
		l.logger.Debug().
			Int("iteration", res.Iterations).
			Int("changed", changed).
			Float64("mean_payoff", payoff).
			Msg("game policy iteration")
		if changed == 0 {
			res.Converged = true
			l.logger.Info().Int("iterations", res.Iterations).Msg("game policy converged")
			return res, nil
		}
	}
	l.logger.Warn().Int("iterations", res.Iterations).Msg("game policy iteration did not converge")
	return res, nil
}
