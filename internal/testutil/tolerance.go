package testutil

import (
	"math"
	"math/cmplx"
	"testing"
)

// RequireClose fails t if got and want differ in length or if any element
// pair is further apart than eps. Unset entries are NaN and only match NaN;
// infinities match only themselves.
func RequireClose(t testing.TB, what string, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values, want %d", what, len(got), len(want))
		return
	}
	for i := range got {
		if !within(got[i], want[i], eps) {
			t.Fatalf("%s[%d] = %v, want %v (eps %g)", what, i, got[i], want[i], eps)
		}
	}
}

// RequireTableClose is RequireClose for per-order tables indexed [y][x].
func RequireTableClose(t testing.TB, what string, got, want [][]float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d rows, want %d", what, len(got), len(want))
		return
	}
	for r := range got {
		if len(got[r]) != len(want[r]) {
			t.Fatalf("%s row %d: got %d orders, want %d", what, r, len(got[r]), len(want[r]))
			return
		}
		for c := range got[r] {
			if !within(got[r][c], want[r][c], eps) {
				t.Fatalf("%s[%d][%d] = %v, want %v (eps %g)", what, r, c, got[r][c], want[r][c], eps)
			}
		}
	}
}

// RequireComplexClose fails t if any element pair differs in modulus by
// more than eps.
func RequireComplexClose(t testing.TB, what string, got, want []complex128, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d values, want %d", what, len(got), len(want))
		return
	}
	for i := range got {
		if d := cmplx.Abs(got[i] - want[i]); !(d <= eps) {
			t.Fatalf("%s[%d] = %v, want %v (diff %g > eps %g)", what, i, got[i], want[i], d, eps)
		}
	}
}

// RequireEfficiencyTable fails t if an efficiency in percent is not finite
// or lies outside [-eps, 100+eps].
func RequireEfficiencyTable(t testing.TB, what string, table [][]float64, eps float64) {
	t.Helper()
	for r, row := range table {
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < -eps || v > 100+eps {
				t.Fatalf("%s[%d][%d] = %v, want a finite percentage", what, r, c, v)
			}
		}
	}
}

func within(a, b, eps float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b || math.Abs(a-b) <= eps
}
