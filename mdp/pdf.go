package mdp

import (
	"fmt"
	"math"
	"math/rand"
)

// ProbabilityTolerance bounds how far a distribution may drift from summing to 1.
const ProbabilityTolerance = 1e-9

type Probability float64

// DiscretePdf is a finite distribution that remembers insertion order, so sampling
// and iteration are reproducible under a seeded source.
type DiscretePdf[Category comparable] struct {
	outcomes []Category
	probs    []Probability
	index    map[Category]int
}

// Add accumulates p onto outcome; repeated outcomes share one entry.
func (p *DiscretePdf[Category]) Add(outcome Category, prob Probability) {
	if p.index == nil {
		p.index = make(map[Category]int)
	}
	if i, ok := p.index[outcome]; ok {
		p.probs[i] += prob
		return
	}
	p.index[outcome] = len(p.outcomes)
	p.outcomes = append(p.outcomes, outcome)
	p.probs = append(p.probs, prob)
}

func (p DiscretePdf[Category]) Len() int {
	return len(p.outcomes)
}

func (p DiscretePdf[Category]) Outcome(i int) (Category, Probability) {
	return p.outcomes[i], p.probs[i]
}

func (p DiscretePdf[Category]) Prob(outcome Category) Probability {
	if i, ok := p.index[outcome]; ok {
		return p.probs[i]
	}
	return 0
}

func (p DiscretePdf[Category]) Sum() float64 {
	sum := 0.0
	for _, prob := range p.probs {
		sum += float64(prob)
	}
	return sum
}

func (p DiscretePdf[Category]) Check() error {
	for i, prob := range p.probs {
		if prob < 0 || math.IsNaN(float64(prob)) {
			return fmt.Errorf("%w: outcome %v has probability %v", ErrConfiguration, p.outcomes[i], prob)
		}
	}
	if sum := p.Sum(); math.Abs(sum-1) > ProbabilityTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrConfiguration, sum)
	}
	return nil
}

// Expect returns the expectation of f under the distribution.
func (p DiscretePdf[Category]) Expect(f func(Category) float64) float64 {
	total := 0.0
	for i, outcome := range p.outcomes {
		if p.probs[i] == 0 {
			continue
		}
		total += float64(p.probs[i]) * f(outcome)
	}
	return total
}

func (p DiscretePdf[Category]) Choose(rng *rand.Rand) Category {
	v := rng.Float64()
	cumulative := 0.0
	var last Category
	for i, outcome := range p.outcomes {
		if p.probs[i] == 0 {
			continue
		}
		cumulative += float64(p.probs[i])
		if cumulative > v {
			return outcome
		}
		last = outcome
	}
	return last
}

func Uniform[Category comparable](outcomes ...Category) DiscretePdf[Category] {
	pdf := DiscretePdf[Category]{}
	if len(outcomes) == 0 {
		return pdf
	}
	p := Probability(1.0 / float64(len(outcomes)))
	for _, o := range outcomes {
		pdf.Add(o, p)
	}
	return pdf
}

func Deterministic[Category comparable](outcome Category) DiscretePdf[Category] {
	pdf := DiscretePdf[Category]{}
	pdf.Add(outcome, 1)
	return pdf
}

// IndexPdf builds a distribution over 0..len(probs)-1 and validates it.
func IndexPdf(probs []float64) (DiscretePdf[int], error) {
	pdf := DiscretePdf[int]{}
	for i, prob := range probs {
		pdf.Add(i, Probability(prob))
	}
	if err := pdf.Check(); err != nil {
		return DiscretePdf[int]{}, err
	}
	return pdf, nil
}
