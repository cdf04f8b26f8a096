// Package belief tracks a probability distribution over hidden states from
// actions and noisy observations.
package belief

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

// ErrInconsistentEvidence is returned when an observation has zero likelihood
// under the predicted belief.
var ErrInconsistentEvidence = errors.New("belief: observation impossible under current belief")

// Model is what a Tracker needs from the environment.
type Model interface {
	NumStates() int
	Transition(mdp.State, mdp.Action) (mdp.DiscretePdf[mdp.State], error)
	// Observation is the likelihood P(y | x).
	Observation(y, x mdp.State) float64
}

// Belief is a distribution indexed by state.
type Belief []float64

func Uniform(n int) Belief {
	b := make(Belief, n)
	for i := range b {
		b[i] = 1 / float64(n)
	}
	return b
}

func (b Belief) Sum() float64 {
	total := 0.0
	for _, p := range b {
		total += p
	}
	return total
}

func (b Belief) Clone() Belief {
	return append(Belief(nil), b...)
}

// MostLikely returns the state with the highest mass, the lowest index on ties.
func (b Belief) MostLikely() mdp.State {
	best := 0
	for i, p := range b {
		if p > b[best] {
			best = i
		}
	}
	return mdp.State(best)
}

func (b Belief) check(n int) error {
	if len(b) != n {
		return fmt.Errorf("%w: belief over %d states, model has %d", mdp.ErrConfiguration, len(b), n)
	}
	for i, p := range b {
		if p < 0 || math.IsNaN(p) {
			return fmt.Errorf("%w: belief[%d] = %v", mdp.ErrConfiguration, i, p)
		}
	}
	if math.Abs(b.Sum()-1) > 1e-6 {
		return fmt.Errorf("%w: belief sums to %v", mdp.ErrConfiguration, b.Sum())
	}
	return nil
}

type Option func(*Tracker)

// WithPerSourceNormalization rescales the predicted mass arriving from each
// source state separately before the observation is applied. The result is
// renormalized globally afterwards, so it is still a distribution.
func WithPerSourceNormalization() Option {
	return func(t *Tracker) { t.perSource = true }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// Tracker is a Bayes filter. It is not safe for concurrent use.
type Tracker struct {
	model     Model
	prior     Belief
	current   Belief
	perSource bool
	logger    zerolog.Logger
}

func NewTracker(model Model, prior Belief, opts ...Option) (*Tracker, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", mdp.ErrConfiguration)
	}
	if err := prior.check(model.NumStates()); err != nil {
		return nil, err
	}
	t := &Tracker{
		model:   model,
		prior:   prior.Clone(),
		current: prior.Clone(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Belief returns a copy of the current belief.
func (t *Tracker) Belief() Belief {
	return t.current.Clone()
}

func (t *Tracker) Reset() {
	t.current = t.prior.Clone()
}

func (t *Tracker) ResetTo(prior Belief) error {
	if err := prior.check(t.model.NumStates()); err != nil {
		return err
	}
	t.prior = prior.Clone()
	t.current = prior.Clone()
	return nil
}

// Update applies action a and then conditions on observation y:
//
//	b'(x') ∝ P(y | x') Σ_x P(x' | x, a) b(x)
//
// On error the current belief is left untouched.
func (t *Tracker) Update(a mdp.Action, y mdp.State) (Belief, error) {
	n := t.model.NumStates()
	if y < 0 || int(y) >= n {
		return nil, fmt.Errorf("%w: observation %d", mdp.ErrConfiguration, y)
	}

	var next Belief
	var err error
	if t.perSource {
		next, err = t.updatePerSource(a, y)
	} else {
		next, err = t.updateGlobal(a, y)
	}
	if err != nil {
		return nil, err
	}

	t.current = next
	t.logger.Debug().
		Int("action", int(a)).
		Int("observation", int(y)).
		Int("most_likely", int(next.MostLikely())).
		Msg("belief updated")
	return next.Clone(), nil
}

func (t *Tracker) predict(a mdp.Action) (Belief, error) {
	predicted := make(Belief, t.model.NumStates())
	for x, p := range t.current {
		if p == 0 {
			continue
		}
		pdf, err := t.model.Transition(mdp.State(x), a)
		if err != nil {
			return nil, err
		}
		for i := 0; i < pdf.Len(); i++ {
			next, q := pdf.Outcome(i)
			predicted[next] += float64(q) * p
		}
	}
	return predicted, nil
}

func (t *Tracker) updateGlobal(a mdp.Action, y mdp.State) (Belief, error) {
	predicted, err := t.predict(a)
	if err != nil {
		return nil, err
	}
	for x := range predicted {
		predicted[x] *= t.model.Observation(y, mdp.State(x))
	}
	return normalize(predicted)
}

// updatePerSource weighs, for every source state x, the observation-filtered
// mass it sends forward and normalizes that contribution on its own.
func (t *Tracker) updatePerSource(a mdp.Action, y mdp.State) (Belief, error) {
	out := make(Belief, t.model.NumStates())
	for x, p := range t.current {
		if p == 0 {
			continue
		}
		pdf, err := t.model.Transition(mdp.State(x), a)
		if err != nil {
			return nil, err
		}
		contrib := make(map[mdp.State]float64, pdf.Len())
		total := 0.0
		for i := 0; i < pdf.Len(); i++ {
			next, q := pdf.Outcome(i)
			w := float64(q) * p * t.model.Observation(y, next)
			contrib[next] += w
			total += w
		}
		if total == 0 {
			continue
		}
		for next, w := range contrib {
			out[next] += p * w / total
		}
	}
	return normalize(out)
}

func normalize(b Belief) (Belief, error) {
	total := b.Sum()
	if total <= 0 || math.IsNaN(total) {
		return nil, ErrInconsistentEvidence
	}
	for i := range b {
		b[i] /= total
	}
	return b, nil
}
