package testutil

import (
	"math"
	"testing"
)

// recorder captures Fatalf calls so the helpers can be checked for both
// outcomes.
type recorder struct {
	testing.TB
	failed bool
	msg    string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.failed = true
	r.msg = format
}

func TestRequireClose(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name      string
		got, want []float64
		fail      bool
	}{
		{"equal", []float64{1, 2, 3}, []float64{1, 2, 3}, false},
		{"within eps", []float64{1, 2.05}, []float64{1, 2}, false},
		{"outside eps", []float64{1, 2.2}, []float64{1, 2}, true},
		{"length", []float64{1}, []float64{1, 2}, true},
		{"unset matches unset", []float64{nan, 1}, []float64{nan, 1}, false},
		{"unset against value", []float64{nan}, []float64{0}, true},
		{"infinity", []float64{math.Inf(1)}, []float64{math.Inf(1)}, false},
		{"opposite infinities", []float64{math.Inf(1)}, []float64{math.Inf(-1)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &recorder{TB: t}
			RequireClose(r, "x", tc.got, tc.want, 0.1)
			if r.failed != tc.fail {
				t.Fatalf("failed = %v, want %v", r.failed, tc.fail)
			}
		})
	}
}

func TestRequireTableClose(t *testing.T) {
	r := &recorder{TB: t}
	RequireTableClose(r, "Ts", [][]float64{{0, 50, 50}}, [][]float64{{0, 50, 50}}, 0)
	if r.failed {
		t.Fatal("equal tables reported as different")
	}
	RequireTableClose(r, "Ts", [][]float64{{0, 50}}, [][]float64{{0, 50, 50}}, 0)
	if !r.failed {
		t.Fatal("ragged tables reported as equal")
	}
}

func TestRequireComplexClose(t *testing.T) {
	r := &recorder{TB: t}
	RequireComplexClose(r, "c", []complex128{1 + 1i}, []complex128{1 + 1.05i}, 0.1)
	if r.failed {
		t.Fatal("close values reported as different")
	}
	RequireComplexClose(r, "c", []complex128{complex(math.NaN(), 0)}, []complex128{0}, 0.1)
	if !r.failed {
		t.Fatal("NaN accepted")
	}
}

func TestRequireEfficiencyTable(t *testing.T) {
	for _, tc := range []struct {
		table [][]float64
		fail  bool
	}{
		{[][]float64{{0, 40, 60}}, false},
		{[][]float64{{-1e-12, 100 + 1e-12}}, false},
		{[][]float64{{-0.5}}, true},
		{[][]float64{{math.Inf(1)}}, true},
		{[][]float64{{math.NaN()}}, true},
	} {
		r := &recorder{TB: t}
		RequireEfficiencyTable(r, "Rs", tc.table, 1e-9)
		if r.failed != tc.fail {
			t.Fatalf("%v: failed = %v, want %v", tc.table, r.failed, tc.fail)
		}
	}
}

func TestSinusoidalIndex(t *testing.T) {
	g := SinusoidalIndex(3, 8, 1.5, 0.1, 0)
	if len(g) != 24 {
		t.Fatalf("len = %d, want 24", len(g))
	}
	// Peak at x = 0, trough half a period later.
	if want := complex(1.6*1.6, 0); math.Abs(real(g[0]-want)) > 1e-12 {
		t.Fatalf("g[0] = %v, want %v", g[0], want)
	}
	if want := complex(1.4*1.4, 0); math.Abs(real(g[4]-want)) > 1e-12 {
		t.Fatalf("g[4] = %v, want %v", g[4], want)
	}
	// Rows are identical.
	for c := 0; c < 8; c++ {
		if g[c] != g[16+c] {
			t.Fatalf("row 0 and row 2 differ at column %d", c)
		}
	}
}

func TestBinaryGrating(t *testing.T) {
	g := BinaryGrating(1, 4, 1, 4, 0.5)
	RequireComplexClose(t, "grating", g, []complex128{4, 4, 1, 1}, 0)
}

func TestDeterministicComplexReproducible(t *testing.T) {
	RequireComplexClose(t, "seed 7", DeterministicComplex(7, 16), DeterministicComplex(7, 16), 0)
}
