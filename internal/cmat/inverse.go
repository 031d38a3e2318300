package cmat

import (
	"math"
	"math/cmplx"
)

// conditionLimit bounds the 1-norm condition estimate accepted by Inverse.
// Beyond it the inverse carries no significant digits.
const conditionLimit = 1e15

const ulp = 0x1p-52

// LU holds a partial-pivoting factorization PA = LU.
// The unit lower factor L and the upper factor U share one matrix.
type LU struct {
	n    int
	lu   []complex128
	perm []int
}

// Factorize computes the LU factorization of the square matrix a.
func Factorize(a *Dense) (*LU, error) {
	if a.rows != a.cols {
		return nil, ErrNotSquare
	}
	if !a.IsFinite() {
		return nil, ErrNonFiniteValues
	}

	n := a.rows
	lu := make([]complex128, n*n)
	copy(lu, a.data)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var scale float64
	for _, v := range lu {
		scale = math.Max(scale, cmplx.Abs(v))
	}
	if scale == 0 {
		return nil, ErrSingular
	}
	tiny := ulp * scale

	for k := 0; k < n; k++ {
		pivot := k
		best := cmplx.Abs(lu[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := cmplx.Abs(lu[i*n+k]); v > best {
				best, pivot = v, i
			}
		}
		if best <= tiny {
			return nil, ErrSingular
		}
		if pivot != k {
			for j := 0; j < n; j++ {
				lu[k*n+j], lu[pivot*n+j] = lu[pivot*n+j], lu[k*n+j]
			}
			perm[k], perm[pivot] = perm[pivot], perm[k]
		}

		d := lu[k*n+k]
		for i := k + 1; i < n; i++ {
			l := lu[i*n+k] / d
			if l == 0 {
				continue
			}
			lu[i*n+k] = l
			rowI := lu[i*n : (i+1)*n]
			rowK := lu[k*n : (k+1)*n]
			for j := k + 1; j < n; j++ {
				rowI[j] -= l * rowK[j]
			}
		}
	}

	return &LU{n: n, lu: lu, perm: perm}, nil
}

// SolveVec solves A x = b for x.
func (f *LU) SolveVec(b []complex128) []complex128 {
	n := f.n
	x := make([]complex128, n)
	for i := 0; i < n; i++ {
		x[i] = b[f.perm[i]]
	}
	for i := 0; i < n; i++ {
		s := x[i]
		for j := 0; j < i; j++ {
			s -= f.lu[i*n+j] * x[j]
		}
		x[i] = s
	}
	for i := n - 1; i >= 0; i-- {
		s := x[i]
		for j := i + 1; j < n; j++ {
			s -= f.lu[i*n+j] * x[j]
		}
		x[i] = s / f.lu[i*n+i]
	}
	return x
}

// Inverse returns the inverse of the square matrix a.
//
// ErrSingular is returned for exactly singular matrices and for matrices
// whose 1-norm condition number exceeds conditionLimit.
func Inverse(a *Dense) (*Dense, error) {
	f, err := Factorize(a)
	if err != nil {
		return nil, err
	}

	n := a.rows
	inv := New(n, n)
	e := make([]complex128, n)
	for j := 0; j < n; j++ {
		clear(e)
		e[j] = 1
		col := f.SolveVec(e)
		for i, v := range col {
			inv.data[i*n+j] = v
		}
	}

	if !inv.IsFinite() {
		return nil, ErrSingular
	}
	if cond := Norm1(a) * Norm1(inv); cond > conditionLimit || math.IsNaN(cond) {
		return nil, ErrSingular
	}
	return inv, nil
}

// InverseDiag returns the element-wise reciprocal of a diagonal.
func InverseDiag(d []complex128) ([]complex128, error) {
	out := make([]complex128, len(d))
	for i, v := range d {
		if v == 0 || cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return nil, ErrSingular
		}
		out[i] = 1 / v
	}
	return out, nil
}
