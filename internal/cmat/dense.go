// Package cmat provides the dense complex matrix algebra used by the RCWA
// engine.
//
// Matrices are stored row-major. Products are delegated to the gonum
// cblas128 implementation; inversion and eigen decomposition are implemented
// here because gonum's LAPACK port only covers real matrices.
package cmat

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Errors returned by cmat functions.
var (
	ErrNotSquare       = errors.New("cmat: matrix is not square")
	ErrShape           = errors.New("cmat: dimension mismatch")
	ErrSingular        = errors.New("cmat: matrix is singular")
	ErrNoConvergence   = errors.New("cmat: eigenvalue iteration did not converge")
	ErrNonFiniteValues = errors.New("cmat: matrix contains NaN or Inf")
)

// Dense is a row-major dense complex matrix.
type Dense struct {
	rows, cols int
	data       []complex128
}

// New returns a zero-filled r×c matrix.
func New(r, c int) *Dense {
	if r <= 0 || c <= 0 {
		panic(fmt.Sprintf("cmat: invalid shape %dx%d", r, c))
	}
	return &Dense{rows: r, cols: c, data: make([]complex128, r*c)}
}

// NewFromData wraps data (row-major, len r*c) without copying.
func NewFromData(r, c int, data []complex128) *Dense {
	if len(data) != r*c {
		panic(fmt.Sprintf("cmat: data length %d does not match %dx%d", len(data), r, c))
	}
	return &Dense{rows: r, cols: c, data: data}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Dense {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Diag returns a square matrix with d on its diagonal.
func Diag(d []complex128) *Dense {
	n := len(d)
	m := New(n, n)
	for i, v := range d {
		m.data[i*n+i] = v
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Dense) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m *Dense) At(i, j int) complex128 { return m.data[i*m.cols+j] }

// Set sets the element at row i, column j.
func (m *Dense) Set(i, j int, v complex128) { m.data[i*m.cols+j] = v }

// Row returns a view of row i. Mutating it mutates m.
func (m *Dense) Row(i int) []complex128 { return m.data[i*m.cols : (i+1)*m.cols] }

// Col returns a copy of column j.
func (m *Dense) Col(j int) []complex128 {
	out := make([]complex128, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Dense) Clone() *Dense {
	data := make([]complex128, len(m.data))
	copy(data, m.data)
	return &Dense{rows: m.rows, cols: m.cols, data: data}
}

// Diagonal returns a copy of the main diagonal.
func (m *Dense) Diagonal() []complex128 {
	n := min(m.rows, m.cols)
	out := make([]complex128, n)
	for i := range out {
		out[i] = m.data[i*m.cols+i]
	}
	return out
}

// OffDiagonalSum returns the sum of magnitudes of all off-diagonal elements.
func (m *Dense) OffDiagonalSum() float64 {
	var sum float64
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if i != j {
				sum += cmplx.Abs(m.data[i*m.cols+j])
			}
		}
	}
	return sum
}

// IsFinite reports whether every element is finite.
func (m *Dense) IsFinite() bool {
	for _, v := range m.data {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

func (m *Dense) general() cblas128.General {
	return cblas128.General{Rows: m.rows, Cols: m.cols, Stride: m.cols, Data: m.data}
}

// Mul returns the product a·b.
func Mul(a, b *Dense) *Dense {
	if a.cols != b.rows {
		panic(fmt.Sprintf("cmat: cannot multiply %dx%d by %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
	c := New(a.rows, b.cols)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, a.general(), b.general(), 0, c.general())
	return c
}

// MulChain multiplies the operands left to right.
func MulChain(ms ...*Dense) *Dense {
	if len(ms) == 0 {
		panic("cmat: empty product")
	}
	out := ms[0]
	for _, m := range ms[1:] {
		out = Mul(out, m)
	}
	return out
}

// MulVec returns a·x.
func MulVec(a *Dense, x []complex128) []complex128 {
	if a.cols != len(x) {
		panic(fmt.Sprintf("cmat: cannot multiply %dx%d by vector of length %d", a.rows, a.cols, len(x)))
	}
	out := make([]complex128, a.rows)
	for i := range out {
		row := a.Row(i)
		var s complex128
		for j, v := range row {
			s += v * x[j]
		}
		out[i] = s
	}
	return out
}

// ScaleRows returns diag(d)·a.
func ScaleRows(d []complex128, a *Dense) *Dense {
	if len(d) != a.rows {
		panic("cmat: diagonal length does not match rows")
	}
	out := a.Clone()
	for i, s := range d {
		row := out.Row(i)
		for j := range row {
			row[j] *= s
		}
	}
	return out
}

// ScaleCols returns a·diag(d).
func ScaleCols(a *Dense, d []complex128) *Dense {
	if len(d) != a.cols {
		panic("cmat: diagonal length does not match columns")
	}
	out := a.Clone()
	for i := 0; i < out.rows; i++ {
		row := out.Row(i)
		for j, s := range d {
			row[j] *= s
		}
	}
	return out
}

// Add returns a+b.
func Add(a, b *Dense) *Dense {
	mustSameShape(a, b)
	out := New(a.rows, a.cols)
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Sub returns a-b.
func Sub(a, b *Dense) *Dense {
	mustSameShape(a, b)
	out := New(a.rows, a.cols)
	for i := range out.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out
}

// Scale returns s·a.
func Scale(s complex128, a *Dense) *Dense {
	out := New(a.rows, a.cols)
	for i, v := range a.data {
		out.data[i] = s * v
	}
	return out
}

// Neg returns -a.
func Neg(a *Dense) *Dense { return Scale(-1, a) }

// Block assembles the 2×2 block matrix [a00 a01; a10 a11].
// All blocks must be square with equal size.
func Block(a00, a01, a10, a11 *Dense) *Dense {
	n := a00.rows
	for _, b := range []*Dense{a00, a01, a10, a11} {
		if b.rows != n || b.cols != n {
			panic("cmat: block sizes differ")
		}
	}
	out := New(2*n, 2*n)
	put := func(b *Dense, r0, c0 int) {
		for i := 0; i < n; i++ {
			copy(out.data[(r0+i)*2*n+c0:(r0+i)*2*n+c0+n], b.Row(i))
		}
	}
	put(a00, 0, 0)
	put(a01, 0, n)
	put(a10, n, 0)
	put(a11, n, n)
	return out
}

// Norm1 returns the maximum absolute column sum.
func Norm1(a *Dense) float64 {
	var best float64
	for j := 0; j < a.cols; j++ {
		var s float64
		for i := 0; i < a.rows; i++ {
			s += cmplx.Abs(a.data[i*a.cols+j])
		}
		best = math.Max(best, s)
	}
	return best
}

// MaxAbsDiff returns max |a_ij - b_ij|.
func MaxAbsDiff(a, b *Dense) float64 {
	mustSameShape(a, b)
	var d float64
	for i := range a.data {
		d = math.Max(d, cmplx.Abs(a.data[i]-b.data[i]))
	}
	return d
}

// EqualApprox reports whether a and b have equal shape and all elements
// agree within tol.
func EqualApprox(a, b *Dense, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	return MaxAbsDiff(a, b) <= tol
}

func mustSameShape(a, b *Dense) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("cmat: shape %dx%d does not match %dx%d", a.rows, a.cols, b.rows, b.cols))
	}
}
