package sweep

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-rcwa/rcwa"
)

// Defaults of a new result.
const (
	DefaultName  = "Simulation"
	DefaultColor = "black"
)

// ErrShape is returned when efficiencies do not fit a result.
var ErrShape = errors.New("sweep: efficiency shape does not match result")

// Result holds the efficiencies of one sweep: one [rows][orders] slice per
// sweep value. Values that were not computed are NaN.
type Result struct {
	Rs, Rp, Ts, Tp *Grid3

	Variable      []float64
	VariableKey   string
	Name          string
	Color         string
	ParameterText string
}

// NewResult returns an all-NaN result for the given order grid and sweep
// values.
func NewResult(rows, orders int, variable []float64, text, key string) *Result {
	n := len(variable)
	return &Result{
		Rs:            NewGrid3(rows, orders, n),
		Rp:            NewGrid3(rows, orders, n),
		Ts:            NewGrid3(rows, orders, n),
		Tp:            NewGrid3(rows, orders, n),
		Variable:      append([]float64(nil), variable...),
		VariableKey:   key,
		Name:          DefaultName,
		Color:         DefaultColor,
		ParameterText: text,
	}
}

// Len returns the number of sweep values.
func (r *Result) Len() int { return len(r.Variable) }

// Insert stores the efficiencies of sweep value i.
func (r *Result) Insert(i int, eff *rcwa.Efficiencies) error {
	rows, orders, _ := r.Rs.Dims()
	if eff.Rows() != rows || eff.Cols() != orders {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrShape, eff.Rows(), eff.Cols(), rows, orders)
	}
	for _, p := range []struct {
		g *Grid3
		v [][]float64
	}{{r.Rs, eff.Rs}, {r.Rp, eff.Rp}, {r.Ts, eff.Ts}, {r.Tp, eff.Tp}} {
		if err := p.g.SetStep(i, p.v); err != nil {
			return err
		}
	}
	return nil
}

// Filled returns the number of sweep values with data.
func (r *Result) Filled() int {
	var n int
	for i := range r.Variable {
		if r.Rs.StepFilled(i) || r.Ts.StepFilled(i) {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	c := *r
	c.Rs, c.Rp, c.Ts, c.Tp = r.Rs.Clone(), r.Rp.Clone(), r.Ts.Clone(), r.Tp.Clone()
	c.Variable = append([]float64(nil), r.Variable...)
	return &c
}

// OrderLine returns the values of diffraction order (hx, hy) over the
// sweep, or zeros when the order was not computed.
func OrderLine(g *Grid3, hx, hy int) []float64 {
	rows, orders, steps := g.Dims()
	ix := (orders-1)/2 + hx
	iy := (rows-1)/2 + hy
	if ix < 0 || ix >= orders || iy < 0 || iy >= rows {
		return make([]float64, steps)
	}
	return append([]float64(nil), g.Line(iy, ix)...)
}

// Energy returns Σ over rows and orders of a + b per step, the energy sum
// of one polarization when a and b hold its R and T efficiencies.
func Energy(a, b *Grid3) []float64 {
	rows, orders, steps := a.Dims()
	y := make([]float64, steps)
	for r := 0; r < rows; r++ {
		for o := 0; o < orders; o++ {
			floats.Add(y, a.Line(r, o))
			floats.Add(y, b.Line(r, o))
		}
	}
	return y
}

// Selection chooses the channels and order of plot series.
type Selection struct {
	Rs, Rp, Ts, Tp bool
	// Es and Ep add the energy sums Σ(R+T) per polarization.
	Es, Ep bool

	OrderX, OrderY int

	// Force returns series even when nothing changed since the last
	// snapshot.
	Force bool
}

// Series is one plot-ready line.
type Series struct {
	Name  string
	Color string
	Dash  string
	X, Y  []float64
}

// Series returns the selected lines of r.
func (r *Result) Series(sel Selection) []Series {
	line := func(suffix, dash string, y []float64) Series {
		return Series{
			Name:  r.Name + "_" + suffix,
			Color: r.Color,
			Dash:  dash,
			X:     append([]float64(nil), r.Variable...),
			Y:     y,
		}
	}

	var out []Series
	if sel.Rs {
		out = append(out, line("Rs", "solid", OrderLine(r.Rs, sel.OrderX, sel.OrderY)))
	}
	if sel.Rp {
		out = append(out, line("Rp", "dot", OrderLine(r.Rp, sel.OrderX, sel.OrderY)))
	}
	if sel.Ts {
		out = append(out, line("Ts", "dash", OrderLine(r.Ts, sel.OrderX, sel.OrderY)))
	}
	if sel.Tp {
		out = append(out, line("Tp", "longdashdot", OrderLine(r.Tp, sel.OrderX, sel.OrderY)))
	}
	if sel.Es {
		out = append(out, line("Es", "solid", Energy(r.Ts, r.Rs)))
	}
	if sel.Ep {
		out = append(out, line("Ep", "dot", Energy(r.Tp, r.Rp)))
	}
	return out
}

// number is a float64 whose JSON form keeps NaN (null) and ±Inf ("+Inf",
// "-Inf").
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = number(math.NaN())
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch s {
		case "+Inf", "Inf", "Infinity":
			*n = number(math.Inf(1))
		case "-Inf", "-Infinity":
			*n = number(math.Inf(-1))
		case "NaN":
			*n = number(math.NaN())
		default:
			return fmt.Errorf("sweep: invalid number %q", s)
		}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("sweep: invalid number %s: %w", b, err)
	}
	*n = number(v)
	return nil
}

type resultJSON struct {
	Rs            [][][]number `json:"Rs_values"`
	Rp            [][][]number `json:"Rp_values"`
	Ts            [][][]number `json:"Ts_values"`
	Tp            [][][]number `json:"Tp_values"`
	Variable      []number     `json:"variable"`
	Color         string       `json:"color"`
	Name          string       `json:"name"`
	ParameterText string       `json:"parameter_text"`
	VariableKey   string       `json:"variable_key,omitempty"`
}

func toNumbers3(g *Grid3) [][][]number {
	nested := g.Nested()
	out := make([][][]number, len(nested))
	for r, row := range nested {
		out[r] = make([][]number, len(row))
		for o, line := range row {
			out[r][o] = toNumbers(line)
		}
	}
	return out
}

func toNumbers(v []float64) []number {
	out := make([]number, len(v))
	for i, x := range v {
		out[i] = number(x)
	}
	return out
}

func fromNumbers(v []number) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func fromNumbers3(v [][][]number) (*Grid3, error) {
	nested := make([][][]float64, len(v))
	for r, row := range v {
		nested[r] = make([][]float64, len(row))
		for o, line := range row {
			nested[r][o] = fromNumbers(line)
		}
	}
	return gridFromNested(nested)
}

// MarshalJSON encodes r in the archive exchange format.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Rs:            toNumbers3(r.Rs),
		Rp:            toNumbers3(r.Rp),
		Ts:            toNumbers3(r.Ts),
		Tp:            toNumbers3(r.Tp),
		Variable:      toNumbers(r.Variable),
		Color:         r.Color,
		Name:          r.Name,
		ParameterText: r.ParameterText,
		VariableKey:   r.VariableKey,
	})
}

// UnmarshalJSON decodes the archive exchange format.
func (r *Result) UnmarshalJSON(b []byte) error {
	var in resultJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	grids := make([]*Grid3, 4)
	for i, v := range [][][][]number{in.Rs, in.Rp, in.Ts, in.Tp} {
		g, err := fromNumbers3(v)
		if err != nil {
			return err
		}
		grids[i] = g
	}
	rows, orders, steps := grids[0].Dims()
	for _, g := range grids[1:] {
		if r2, o2, s2 := g.Dims(); r2 != rows || o2 != orders || s2 != steps {
			return fmt.Errorf("%w: channel shapes differ", ErrShape)
		}
	}
	if steps != len(in.Variable) && rows*orders > 0 {
		return fmt.Errorf("%w: %d steps for %d variable values", ErrShape, steps, len(in.Variable))
	}

	*r = Result{
		Rs:            grids[0],
		Rp:            grids[1],
		Ts:            grids[2],
		Tp:            grids[3],
		Variable:      fromNumbers(in.Variable),
		VariableKey:   in.VariableKey,
		Name:          in.Name,
		Color:         in.Color,
		ParameterText: in.ParameterText,
	}
	return nil
}
