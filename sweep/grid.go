package sweep

import (
	"fmt"
	"math"
)

// Grid3 is a dense [rows][orders][steps] array of efficiencies.
type Grid3 struct {
	rows, orders, steps int
	data                []float64
}

// NewGrid3 returns a grid filled with NaN.
func NewGrid3(rows, orders, steps int) *Grid3 {
	if rows < 0 || orders < 0 || steps < 0 {
		panic(fmt.Sprintf("sweep: invalid grid shape %dx%dx%d", rows, orders, steps))
	}
	g := &Grid3{rows: rows, orders: orders, steps: steps, data: make([]float64, rows*orders*steps)}
	for i := range g.data {
		g.data[i] = math.NaN()
	}
	return g
}

// Dims returns the grid shape.
func (g *Grid3) Dims() (rows, orders, steps int) { return g.rows, g.orders, g.steps }

func (g *Grid3) index(r, o, s int) int { return (r*g.orders+o)*g.steps + s }

// At returns the value at row r, order o and step s.
func (g *Grid3) At(r, o, s int) float64 { return g.data[g.index(r, o, s)] }

// Set sets the value at row r, order o and step s.
func (g *Grid3) Set(r, o, s int, v float64) { g.data[g.index(r, o, s)] = v }

// Line returns a view of the values of row r and order o over all steps.
func (g *Grid3) Line(r, o int) []float64 {
	i := g.index(r, o, 0)
	return g.data[i : i+g.steps]
}

// SetStep writes a [rows][orders] slice at step s.
func (g *Grid3) SetStep(s int, v [][]float64) error {
	if s < 0 || s >= g.steps {
		return fmt.Errorf("sweep: step %d out of range [0,%d)", s, g.steps)
	}
	if len(v) != g.rows {
		return fmt.Errorf("sweep: got %d rows, want %d", len(v), g.rows)
	}
	for r, row := range v {
		if len(row) != g.orders {
			return fmt.Errorf("sweep: row %d has %d orders, want %d", r, len(row), g.orders)
		}
		for o, x := range row {
			g.Set(r, o, s, x)
		}
	}
	return nil
}

// StepFilled reports whether any value at step s is not NaN.
func (g *Grid3) StepFilled(s int) bool {
	for r := 0; r < g.rows; r++ {
		for o := 0; o < g.orders; o++ {
			if !math.IsNaN(g.At(r, o, s)) {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy of g.
func (g *Grid3) Clone() *Grid3 {
	c := *g
	c.data = append([]float64(nil), g.data...)
	return &c
}

// Nested returns the grid as nested slices.
func (g *Grid3) Nested() [][][]float64 {
	out := make([][][]float64, g.rows)
	for r := range out {
		out[r] = make([][]float64, g.orders)
		for o := range out[r] {
			out[r][o] = append([]float64(nil), g.Line(r, o)...)
		}
	}
	return out
}

// gridFromNested builds a grid from nested slices, which must be
// rectangular.
func gridFromNested(v [][][]float64) (*Grid3, error) {
	rows := len(v)
	var orders, steps int
	if rows > 0 {
		orders = len(v[0])
		if orders > 0 {
			steps = len(v[0][0])
		}
	}
	g := &Grid3{rows: rows, orders: orders, steps: steps, data: make([]float64, rows*orders*steps)}
	for r, row := range v {
		if len(row) != orders {
			return nil, fmt.Errorf("sweep: row %d has %d orders, want %d", r, len(row), orders)
		}
		for o, line := range row {
			if len(line) != steps {
				return nil, fmt.Errorf("sweep: row %d order %d has %d steps, want %d", r, o, len(line), steps)
			}
			copy(g.Line(r, o), line)
		}
	}
	return g, nil
}
