package sweep

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/cwbudde/algo-rcwa/internal/testutil"
	"github.com/cwbudde/algo-rcwa/rcwa"
)

// efficiencies returns one row of 2h+1 orders with every channel set to v.
func efficiencies(h int, v float64) *rcwa.Efficiencies {
	row := func() [][]float64 {
		r := make([]float64, 2*h+1)
		for i := range r {
			r[i] = v
		}
		return [][]float64{r}
	}
	return &rcwa.Efficiencies{Rs: row(), Rp: row(), Ts: row(), Tp: row(), HarmonicX: h}
}

func TestNewResultIsNaN(t *testing.T) {
	r := NewResult(1, 3, []float64{1, 2}, "text", KeyTheta)
	if r.Len() != 2 || r.Filled() != 0 {
		t.Fatalf("len = %d, filled = %d, want 2, 0", r.Len(), r.Filled())
	}
	if r.Name != DefaultName || r.Color != DefaultColor {
		t.Fatalf("name = %q, color = %q", r.Name, r.Color)
	}
	for _, g := range []*Grid3{r.Rs, r.Rp, r.Ts, r.Tp} {
		if rows, orders, steps := g.Dims(); rows != 1 || orders != 3 || steps != 2 {
			t.Fatalf("dims = %d×%d×%d, want 1×3×2", rows, orders, steps)
		}
		if v := g.At(0, 2, 1); !math.IsNaN(v) {
			t.Fatalf("unset cell = %v, want NaN", v)
		}
	}
}

func TestResultInsert(t *testing.T) {
	r := NewResult(1, 3, []float64{0, 1, 2}, "", KeyTheta)
	if err := r.Insert(1, efficiencies(1, 7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if r.Filled() != 1 {
		t.Fatalf("filled = %d, want 1", r.Filled())
	}
	testutil.RequireClose(t, "Ts", r.Ts.Line(0, 0), []float64{math.NaN(), 7, math.NaN()}, 0)

	if err := r.Insert(0, efficiencies(2, 1)); !errors.Is(err, ErrShape) {
		t.Fatalf("wrong order count: err = %v, want ErrShape", err)
	}
	if err := r.Insert(3, efficiencies(1, 1)); err == nil {
		t.Fatal("out of range index accepted")
	}
}

func TestResultCloneIsDeep(t *testing.T) {
	r := NewResult(1, 1, []float64{0}, "", KeyTheta)
	c := r.Clone()
	c.Rs.Set(0, 0, 0, 5)
	c.Variable[0] = 9
	if v := r.Rs.At(0, 0, 0); !math.IsNaN(v) {
		t.Fatalf("original Rs = %v after editing the clone", v)
	}
	if r.Variable[0] != 0 {
		t.Fatalf("original variable = %v after editing the clone", r.Variable[0])
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	r := NewResult(1, 3, []float64{0.1, 1.0 / 3, math.Pi}, "Variable parameter: theta\n", KeyTheta)
	if err := r.Insert(0, efficiencies(1, 1.0/7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	r.Rs.Set(0, 1, 1, math.Inf(1))
	r.Tp.Set(0, 2, 1, math.Inf(-1))
	r.Rp.Set(0, 0, 2, 5e-324)
	r.Name, r.Color = "run", "blue"

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	for _, k := range []string{"Rs_values", "Rp_values", "Ts_values", "Tp_values", "variable", "color", "name", "parameter_text"} {
		if _, ok := raw[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}

	var got Result
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Name != r.Name || got.Color != r.Color || got.ParameterText != r.ParameterText || got.VariableKey != r.VariableKey {
		t.Fatalf("metadata = %q %q %q %q", got.Name, got.Color, got.ParameterText, got.VariableKey)
	}
	if !slices.Equal(got.Variable, r.Variable) {
		t.Fatalf("variable = %v, want %v", got.Variable, r.Variable)
	}

	for _, pair := range [][2]*Grid3{{r.Rs, got.Rs}, {r.Rp, got.Rp}, {r.Ts, got.Ts}, {r.Tp, got.Tp}} {
		want, have := pair[0].Nested(), pair[1].Nested()
		if len(have) != len(want) {
			t.Fatalf("got %d rows, want %d", len(have), len(want))
		}
		for i := range want {
			testutil.RequireTableClose(t, "round trip", have[i], want[i], 0)
		}
	}
}

func TestResultUnmarshalRejectsRaggedArrays(t *testing.T) {
	for _, in := range []string{
		`{"Rs_values":[[[1,2],[3]]],"Rp_values":[],"Ts_values":[],"Tp_values":[],"variable":[0,1]}`,
		`{"Rs_values":[[["x"]]],"Rp_values":[[[1]]],"Ts_values":[[[1]]],"Tp_values":[[[1]]],"variable":[0]}`,
	} {
		var r Result
		if err := json.Unmarshal([]byte(in), &r); err == nil {
			t.Fatalf("accepted %s", in)
		}
	}
}

func TestOrderLine(t *testing.T) {
	r := NewResult(1, 5, []float64{0, 1}, "", KeyTheta)
	r.Ts.Set(0, 3, 0, 42)

	if v := OrderLine(r.Ts, 1, 0)[0]; v != 42 {
		t.Fatalf("order +1 = %v, want 42", v)
	}
	// Orders outside the grid read as zero.
	testutil.RequireClose(t, "order +3", OrderLine(r.Ts, 3, 0), []float64{0, 0}, 0)
	testutil.RequireClose(t, "row +1", OrderLine(r.Ts, 0, 1), []float64{0, 0}, 0)
}

func TestEnergy(t *testing.T) {
	r := NewResult(1, 3, []float64{0, 1, 2}, "", KeyTheta)
	if err := r.Insert(0, efficiencies(1, 10)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	r.Ts.Set(0, 0, 1, 50)
	r.Rs.Set(0, 0, 1, 50)
	testutil.RequireClose(t, "Energy", Energy(r.Ts, r.Rs), []float64{60, math.NaN(), math.NaN()}, 1e-12)
}

func TestResultSeries(t *testing.T) {
	r := NewResult(1, 3, []float64{0, 1}, "", KeyTheta)
	for i, v := range []float64{10, 20} {
		if err := r.Insert(i, efficiencies(1, v)); err != nil {
			t.Fatalf("Insert %d: %v", i, err)
		}
	}

	series := r.Series(Selection{Rs: true, Tp: true, Es: true, OrderX: 1})
	if len(series) != 3 {
		t.Fatalf("got %d series, want 3", len(series))
	}
	for i, want := range []struct{ name, dash string }{
		{"Simulation_Rs", "solid"},
		{"Simulation_Tp", "longdashdot"},
		{"Simulation_Es", "solid"},
	} {
		if series[i].Name != want.name || series[i].Dash != want.dash {
			t.Fatalf("series %d = %q %q, want %q %q", i, series[i].Name, series[i].Dash, want.name, want.dash)
		}
	}
	testutil.RequireClose(t, "Rs x", series[0].X, []float64{0, 1}, 0)
	testutil.RequireClose(t, "Rs y", series[0].Y, []float64{10, 20}, 0)
	testutil.RequireClose(t, "Es y", series[2].Y, []float64{60, 120}, 0)

	if s := r.Series(Selection{}); len(s) != 0 {
		t.Fatalf("empty selection gave %d series", len(s))
	}
}
