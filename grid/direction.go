package grid

import (
	"fmt"
	"strings"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

// Direction is an intended move. The enumeration order is also the tie-break order.
type Direction int

const (
	Left Direction = iota
	Up
	Right
	Down
)

var Directions = []Direction{Left, Up, Right, Down}

func (d Direction) Valid() bool {
	return d >= Left && d <= Down
}

// CounterClockwise is the direction rotated 90° counterclockwise.
func (d Direction) CounterClockwise() Direction {
	return (d + 3) % 4
}

func (d Direction) Clockwise() Direction {
	return (d + 1) % 4
}

func (d Direction) delta() (int, int) {
	switch d {
	case Left:
		return 0, -1
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

func (d Direction) Arrow() string {
	switch d {
	case Left:
		return "←"
	case Up:
		return "↑"
	case Right:
		return "→"
	case Down:
		return "↓"
	}
	return "?"
}

func (d Direction) Action() mdp.Action {
	return mdp.Action(d)
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return Left, nil
	case "up", "u":
		return Up, nil
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	}
	return 0, fmt.Errorf("%w: %q", mdp.ErrInvalidAction, s)
}

func directionOf(a mdp.Action) (Direction, error) {
	d := Direction(a)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", mdp.ErrInvalidAction, a)
	}
	return d, nil
}
