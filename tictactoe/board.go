// Package tictactoe is the 3x3 noughts and crosses game used to exercise the
// two-player Monte-Carlo learner in package mdp.
package tictactoe

import (
	"strings"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

type Mark int8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	}
	return "."
}

func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	}
	return Empty
}

// Board is a position, squares 0..8 in row-major order. Being an array it is
// comparable and usable as a map key.
type Board [9]Mark

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the mark holding a full line, or Empty.
func (b Board) Winner() Mark {
	for _, l := range lines {
		if b[l[0]] != Empty && b[l[0]] == b[l[1]] && b[l[1]] == b[l[2]] {
			return b[l[0]]
		}
	}
	return Empty
}

func (b Board) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

func (b Board) Over() bool {
	return b.Winner() != Empty || b.Full()
}

// Turn is the mark to move next; X always opens.
func (b Board) Turn() Mark {
	xs, os := 0, 0
	for _, m := range b {
		switch m {
		case X:
			xs++
		case O:
			os++
		}
	}
	if xs > os {
		return O
	}
	return X
}

func (b Board) EmptySquares() []mdp.Action {
	var out []mdp.Action
	for i, m := range b {
		if m == Empty {
			out = append(out, mdp.Action(i))
		}
	}
	return out
}

// Place puts the mark of the side to move on square a. Illegal moves return the
// board unchanged and false.
func (b Board) Place(a mdp.Action) (Board, bool) {
	if a < 0 || a > 8 || b[a] != Empty || b.Over() {
		return b, false
	}
	b[a] = b.Turn()
	return b, true
}

func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		if r > 0 {
			sb.WriteString("\n")
		}
		for c := 0; c < 3; c++ {
			if c > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(b[3*r+c].String())
		}
	}
	return sb.String()
}

// ParseBoard reads nine marks, ignoring whitespace; '.', '-' and '_' are empty.
func ParseBoard(s string) (Board, bool) {
	var b Board
	i := 0
	for _, r := range s {
		var m Mark
		switch r {
		case ' ', '\n', '\t', '|':
			continue
		case 'x', 'X':
			m = X
		case 'o', 'O':
			m = O
		case '.', '-', '_':
			m = Empty
		default:
			return Board{}, false
		}
		if i == len(b) {
			return Board{}, false
		}
		b[i] = m
		i++
	}
	return b, i == len(b)
}
