package mdp

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a malformed model. It is never recovered internally.
	ErrConfiguration = errors.New("mdp: configuration error")

	ErrInvalidAction = errors.New("mdp: invalid action")

	ErrNoFeasibleAction = fmt.Errorf("%w: no feasible action", ErrConfiguration)

	ErrSingularSystem = errors.New("mdp: singular policy evaluation system")
)
