// Package grid describes rectangular grid worlds with walls and lateral action
// noise, and derives their transition and sensor models.
package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

// Wall is the reward sentinel of an impassable cell.
var Wall = math.NaN()

func IsWall(reward float64) bool {
	return math.IsNaN(reward)
}

type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// ActionNoise splits an intended move into {counterclockwise, intended, clockwise}.
type ActionNoise [3]float64

var DefaultActionNoise = ActionNoise{0.1, 0.8, 0.1}

// ObservationNoise is the sensor model: the true cell is reported with
// probability Self, each open neighbor with Neighbor. Mass of missing neighbors
// goes to Self.
type ObservationNoise struct {
	Self     float64
	Neighbor float64
}

var DefaultObservationNoise = ObservationNoise{Self: 0.6, Neighbor: 0.1}

type Config struct {
	Rewards          [][]float64
	ActionNoise      ActionNoise
	ObservationNoise ObservationNoise
	Terminals        []Cell
}

// Model is an immutable grid. States are the non-wall cells in row-major order.
type Model struct {
	rows, cols int
	rewards    [][]float64
	noise      ActionNoise
	sensor     ObservationNoise
	cells      []Cell
	states     map[Cell]mdp.State
	terminals  map[mdp.State]bool
}

func NewModel(cfg Config) (*Model, error) {
	rows := len(cfg.Rewards)
	if rows == 0 || len(cfg.Rewards[0]) == 0 {
		return nil, fmt.Errorf("%w: empty grid", mdp.ErrConfiguration)
	}
	cols := len(cfg.Rewards[0])
	if err := checkNoise(cfg.ActionNoise); err != nil {
		return nil, err
	}
	if err := checkSensor(cfg.ObservationNoise); err != nil {
		return nil, err
	}

	m := &Model{
		rows:      rows,
		cols:      cols,
		rewards:   make([][]float64, rows),
		noise:     cfg.ActionNoise,
		sensor:    cfg.ObservationNoise,
		states:    make(map[Cell]mdp.State),
		terminals: make(map[mdp.State]bool),
	}
	for r, row := range cfg.Rewards {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", mdp.ErrConfiguration, r, len(row), cols)
		}
		m.rewards[r] = append([]float64(nil), row...)
		for c, reward := range row {
			if IsWall(reward) {
				continue
			}
			if math.IsInf(reward, 0) {
				return nil, fmt.Errorf("%w: cell (%d,%d) has infinite reward", mdp.ErrConfiguration, r, c)
			}
			cell := Cell{Row: r, Col: c}
			m.states[cell] = mdp.State(len(m.cells))
			m.cells = append(m.cells, cell)
		}
	}
	if len(m.cells) == 0 {
		return nil, fmt.Errorf("%w: grid has no open cells", mdp.ErrConfiguration)
	}
	for _, cell := range cfg.Terminals {
		s, ok := m.State(cell)
		if !ok {
			return nil, fmt.Errorf("%w: terminal %v is not an open cell", mdp.ErrConfiguration, cell)
		}
		m.terminals[s] = true
	}
	return m, nil
}

func checkNoise(n ActionNoise) error {
	sum := 0.0
	for _, p := range n {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return fmt.Errorf("%w: action noise %v", mdp.ErrConfiguration, n)
		}
		sum += p
	}
	if math.Abs(sum-1) > mdp.ProbabilityTolerance {
		return fmt.Errorf("%w: action noise %v sums to %v", mdp.ErrConfiguration, n, sum)
	}
	return nil
}

func checkSensor(o ObservationNoise) error {
	if o.Self < 0 || o.Neighbor < 0 {
		return fmt.Errorf("%w: observation noise %+v", mdp.ErrConfiguration, o)
	}
	if total := o.Self + 4*o.Neighbor; math.Abs(total-1) > mdp.ProbabilityTolerance {
		return fmt.Errorf("%w: observation noise self+4*neighbor = %v", mdp.ErrConfiguration, total)
	}
	return nil
}

func (m *Model) Rows() int      { return m.rows }
func (m *Model) Cols() int      { return m.cols }
func (m *Model) NumStates() int { return len(m.cells) }

func (m *Model) ActionNoise() ActionNoise           { return m.noise }
func (m *Model) ObservationNoise() ObservationNoise { return m.sensor }

func (m *Model) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < m.rows && c.Col >= 0 && c.Col < m.cols
}

func (m *Model) IsWall(c Cell) bool {
	return m.InBounds(c) && IsWall(m.rewards[c.Row][c.Col])
}

// Open reports whether c is on the grid and not a wall.
func (m *Model) Open(c Cell) bool {
	return m.InBounds(c) && !IsWall(m.rewards[c.Row][c.Col])
}

func (m *Model) State(c Cell) (mdp.State, bool) {
	s, ok := m.states[c]
	return s, ok
}

func (m *Model) Cell(s mdp.State) Cell {
	return m.cells[s]
}

func (m *Model) Cells() []Cell {
	return append([]Cell(nil), m.cells...)
}

// Reward of a cell; walls and off-grid cells report Wall.
func (m *Model) Reward(c Cell) float64 {
	if !m.InBounds(c) {
		return Wall
	}
	return m.rewards[c.Row][c.Col]
}

func (m *Model) Terminal(c Cell) bool {
	s, ok := m.State(c)
	return ok && m.terminals[s]
}

// Move resolves a single deterministic move: leaving the grid or bumping into a
// wall keeps the agent in place.
func (m *Model) Move(c Cell, d Direction) Cell {
	dr, dc := d.delta()
	next := Cell{Row: c.Row + dr, Col: c.Col + dc}
	if !m.Open(next) {
		return c
	}
	return next
}

// Neighbors lists the open cardinal neighbors of c in up, down, right, left order.
func (m *Model) Neighbors(c Cell) []Cell {
	var out []Cell
	for _, d := range []Direction{Up, Down, Right, Left} {
		dr, dc := d.delta()
		n := Cell{Row: c.Row + dr, Col: c.Col + dc}
		if m.Open(n) {
			out = append(out, n)
		}
	}
	return out
}

// Grid lays a state-indexed table out as rows, with NaN at walls.
func (m *Model) Grid(values []float64) [][]float64 {
	out := make([][]float64, m.rows)
	for r := range out {
		out[r] = make([]float64, m.cols)
		for c := range out[r] {
			out[r][c] = Wall
		}
	}
	for s, cell := range m.cells {
		if s < len(values) {
			out[cell.Row][cell.Col] = values[s]
		}
	}
	return out
}

// ParseRewardRow reads a whitespace or comma separated row; "#", "W" and "wall"
// mark walls.
func ParseRewardRow(row string) ([]float64, error) {
	fields := strings.FieldsFunc(row, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "#", "w", "wall", "none":
			out = append(out, Wall)
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: reward %q: %v", mdp.ErrConfiguration, f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func ParseRewards(rows []string) ([][]float64, error) {
	out := make([][]float64, 0, len(rows))
	for _, row := range rows {
		parsed, err := ParseRewardRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func (m *Model) terminalSet() map[mdp.State]bool {
	out := make(map[mdp.State]bool, len(m.terminals))
	for s := range m.terminals {
		out[s] = true
	}
	return out
}
