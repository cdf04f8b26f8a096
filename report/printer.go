// Package report renders solver output: colored grids and tables for the
// terminal and HTML line charts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/mat"

	"github.com/CodeStranger-Fred/beliefdp/grid"
	"github.com/CodeStranger-Fred/beliefdp/mdp"
)

type Printer struct {
	w  io.Writer
	au aurora.Aurora
}

// NewPrinter writes to w; color toggles ANSI escapes.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, au: aurora.NewAurora(color)}
}

func format2x2(x float64) string {
	if x < 0 {
		return " -" + fmt.Sprintf("%05.2f", -x)
	}
	return fmt.Sprintf(" %05.2f", x)
}

const wallCell = "  #### "

func (p *Printer) title(s string) {
	if s != "" {
		fmt.Fprintln(p.w, p.au.Bold(s))
	}
}

// ValueGrid prints a state-indexed table laid out on the grid. Terminal cells
// are green, walls are hatched.
func (p *Printer) ValueGrid(title string, m *grid.Model, values []float64) {
	p.title(title)
	laid := m.Grid(values)
	for r := range laid {
		for c, v := range laid[r] {
			cell := grid.Cell{Row: r, Col: c}
			switch {
			case m.IsWall(cell):
				fmt.Fprint(p.w, p.au.Gray(12, wallCell))
			case m.Terminal(cell):
				fmt.Fprint(p.w, p.au.Green(fmt.Sprintf("%7s", format2x2(v))))
			default:
				fmt.Fprint(p.w, p.au.Blue(fmt.Sprintf("%7s", format2x2(v))))
			}
			fmt.Fprint(p.w, p.au.White("|"))
		}
		fmt.Fprintln(p.w)
	}
}

// PolicyGrid prints one arrow per cell; terminal cells show T.
func (p *Printer) PolicyGrid(title string, m *grid.Model, policy mdp.PolicyTable) {
	p.title(title)
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			cell := grid.Cell{Row: r, Col: c}
			s, ok := m.State(cell)
			switch {
			case !ok:
				fmt.Fprint(p.w, p.au.Gray(12, " # "))
			case m.Terminal(cell):
				fmt.Fprint(p.w, p.au.Green(" T "))
			case int(s) < len(policy) && policy[s] != mdp.NoAction:
				fmt.Fprint(p.w, p.au.Cyan(" "+grid.Direction(policy[s]).Arrow()+" "))
			default:
				fmt.Fprint(p.w, " ? ")
			}
			fmt.Fprint(p.w, p.au.White("|"))
		}
		fmt.Fprintln(p.w)
	}
}

// BeliefGrid prints a belief as percentages and highlights the most likely cell.
func (p *Printer) BeliefGrid(title string, m *grid.Model, b []float64) {
	p.title(title)
	best := 0
	for i, v := range b {
		if v > b[best] {
			best = i
		}
	}
	bestCell := m.Cell(mdp.State(best))
	laid := m.Grid(b)
	for r := range laid {
		for c, v := range laid[r] {
			cell := grid.Cell{Row: r, Col: c}
			text := fmt.Sprintf(" %5.1f%% ", 100*v)
			switch {
			case m.IsWall(cell):
				fmt.Fprint(p.w, p.au.Gray(12, "  ####  "))
			case cell == bestCell:
				fmt.Fprint(p.w, p.au.Yellow(text).Bold())
			default:
				fmt.Fprint(p.w, p.au.Blue(text))
			}
			fmt.Fprint(p.w, p.au.White("|"))
		}
		fmt.Fprintln(p.w)
	}
}

// StageValues prints a [stage][state] table with one row per state and one
// column per stage.
func (p *Printer) StageValues(title string, values mdp.StageValues) {
	p.title(title)
	p.stageHeader(len(values))
	if len(values) == 0 {
		return
	}
	for x := range values[0] {
		fmt.Fprintf(p.w, "x=%-2d", x)
		for k := range values {
			fmt.Fprintf(p.w, " %8.3f", values[k][x])
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) StagePolicy(title string, policy mdp.StagePolicy) {
	p.title(title)
	p.stageHeader(len(policy))
	if len(policy) == 0 {
		return
	}
	for x := range policy[0] {
		fmt.Fprintf(p.w, "x=%-2d", x)
		for k := range policy {
			if policy[k][x] == mdp.NoAction {
				fmt.Fprintf(p.w, " %8s", "-")
				continue
			}
			fmt.Fprintf(p.w, " %8d", policy[k][x])
		}
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) stageHeader(stages int) {
	var sb strings.Builder
	sb.WriteString("    ")
	for k := 0; k < stages; k++ {
		sb.WriteString(fmt.Sprintf(" %8s", fmt.Sprintf("k=%d", k)))
	}
	fmt.Fprintln(p.w, p.au.Faint(sb.String()))
}

func (p *Printer) Matrix(name string, m mat.Matrix) {
	fmt.Fprintf(p.w, "%s =\n%.4g\n", p.au.Bold(name), mat.Formatted(m, mat.Prefix(""), mat.Squeeze()))
}

// Line prints a labelled value.
func (p *Printer) Line(label string, value any) {
	fmt.Fprintf(p.w, "%s %v\n", p.au.Bold(label+":"), value)
}
