package mdp

import "github.com/rs/zerolog"

const (
	DefaultEpsilon       = 1e-6
	DefaultMaxIterations = 100

	// tieTolerance decides when two action values count as equal; the earlier
	// action in enumeration order then wins.
	tieTolerance = 1e-9
)

type options struct {
	epsilon       float64
	maxIterations int
	zeroInit      bool
	objective     *Objective
	initialPolicy PolicyTable
	logger        zerolog.Logger
}

type Option func(*options)

func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps > 0 {
			o.epsilon = eps
		}
	}
}

func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithZeroInit starts value iteration from W_0 = 0 instead of the rewards.
func WithZeroInit() Option {
	return func(o *options) { o.zeroInit = true }
}

// WithObjective overrides the optimization direction. Value and policy
// iteration default to the MDP's Objective, backward induction to Minimize.
func WithObjective(obj Objective) Option {
	return func(o *options) { o.objective = &obj }
}

func WithInitialPolicy(p PolicyTable) Option {
	return func(o *options) { o.initialPolicy = p.Clone() }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) *options {
	o := &options{
		epsilon:       DefaultEpsilon,
		maxIterations: DefaultMaxIterations,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) objectiveOr(def Objective) Objective {
	if o.objective != nil {
		return *o.objective
	}
	return def
}

// solving returns m with the overriding objective applied; m itself is not modified.
func (o *options) solving(m *MDP) *MDP {
	if o.objective == nil || *o.objective == m.Objective {
		return m
	}
	c := *m
	c.Objective = *o.objective
	return &c
}
