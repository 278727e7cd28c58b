// Package canvas is a character grid for drawing projected scenes in a
// terminal.
//
// Each cell holds one rune and a [Class]. Drawing never fails: writes
// outside the grid are clipped. Later writes overwrite earlier ones, so
// callers paint far-to-near.
package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Class tags a cell so the caller can style it at output time.
type Class uint8

const (
	Blank Class = iota
	Axis
	Origin
	Input
	Output
	Text
	Faint
)

// Cell is one character position.
type Cell struct {
	Ch    rune
	Class Class
}

// Canvas is a fixed-size grid of cells.
type Canvas struct {
	w, h  int
	cells []Cell
}

// New returns a blank canvas. Negative sizes are treated as zero.
func New(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	c := &Canvas{w: width, h: height, cells: make([]Cell, width*height)}
	c.Clear()
	return c
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

// Clear resets every cell to a blank space.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{Ch: ' '}
	}
}

// At returns the cell at (x, y), or a blank cell outside the grid.
func (c *Canvas) At(x, y int) Cell {
	if !c.inside(x, y) {
		return Cell{Ch: ' '}
	}
	return c.cells[y*c.w+x]
}

// Set writes ch at (x, y).
func (c *Canvas) Set(x, y int, ch rune, class Class) {
	if !c.inside(x, y) {
		return
	}
	c.cells[y*c.w+x] = Cell{Ch: ch, Class: class}
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.w && y < c.h
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm. The
// glyph follows the slope of the whole line.
func (c *Canvas) Line(x0, y0, x1, y1 int, class Class) {
	ch := slopeGlyph(x1-x0, y1-y0)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, ch, class)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// LineF draws a line between float coordinates, rounding to cells. Lines
// with an endpoint far outside the grid are skipped.
func (c *Canvas) LineF(x0, y0, x1, y1 float64, class Class) {
	limit := float64(4 * (c.w + c.h + 1))
	for _, v := range [4]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.Abs(v) > limit {
			return
		}
	}
	c.Line(round(x0), round(y0), round(x1), round(y1), class)
}

// Text writes s centered on (x, y).
func (c *Canvas) Text(x, y int, s string, class Class) {
	runes := []rune(s)
	x -= len(runes) / 2
	for i, r := range runes {
		c.Set(x+i, y, r, class)
	}
}

// slopeGlyph picks a line character for a screen delta where y grows down.
func slopeGlyph(dx, dy int) rune {
	ax, ay := abs(dx), abs(dy)
	switch {
	case ax == 0 && ay == 0:
		return '*'
	case 2*ay < ax:
		return '-'
	case 2*ax < ay:
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

// Lines returns each row with trailing blanks removed.
func (c *Canvas) Lines() []string {
	out := make([]string, c.h)
	for y := range c.h {
		var b strings.Builder
		for x := range c.w {
			b.WriteRune(c.cells[y*c.w+x].Ch)
		}
		out[y] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// String returns the plain rows joined by newlines.
func (c *Canvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

// Styled renders the grid with one lipgloss style per class. Runs of cells
// that share a class are rendered together.
func (c *Canvas) Styled(styles map[Class]lipgloss.Style) string {
	var out strings.Builder
	for y := range c.h {
		if y > 0 {
			out.WriteByte('\n')
		}
		row := c.cells[y*c.w : (y+1)*c.w]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].Class == row[start].Class {
				end++
			}
			var run strings.Builder
			for _, cell := range row[start:end] {
				run.WriteRune(cell.Ch)
			}
			if st, ok := styles[row[start].Class]; ok && row[start].Class != Blank {
				out.WriteString(st.Render(run.String()))
			} else {
				out.WriteString(run.String())
			}
			start = end
		}
	}
	return out.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func round(v float64) int { return int(math.Round(v)) }
