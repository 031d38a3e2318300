// Package smatrix implements the block scattering-matrix algebra used to
// cascade layers in rigorous coupled-wave analysis.
//
// A Matrix relates the mode amplitudes leaving a section of the stack to
// those entering it:
//
//	[c1⁻]   [S11 S12] [c1⁺]
//	[c2⁺] = [S21 S22] [c2⁻]
//
// Cascading two sections is the Redheffer star product. It is associative
// but not commutative; Cascade folds operands in physical order.
package smatrix

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
)

var (
	// ErrDimensionMismatch is returned when blocks or operands differ in size.
	ErrDimensionMismatch = errors.New("smatrix: dimension mismatch")
	// ErrEmpty is returned by Cascade without operands.
	ErrEmpty = errors.New("smatrix: no matrices to cascade")
)

// Matrix is a scattering matrix made of four square blocks of equal size.
type Matrix struct {
	S11, S12, S21, S22 *cmat.Dense
}

// Unity returns the neutral element of the star product:
// S11 = S22 = 0, S12 = S21 = I.
func Unity(dim int) *Matrix {
	return &Matrix{
		S11: cmat.New(dim, dim),
		S12: cmat.Identity(dim),
		S21: cmat.Identity(dim),
		S22: cmat.New(dim, dim),
	}
}

// Dim returns the block size.
func (m *Matrix) Dim() int {
	r, _ := m.S11.Dims()
	return r
}

// Validate checks that all blocks are present, square and of equal size.
func (m *Matrix) Validate() error {
	if m == nil || m.S11 == nil || m.S12 == nil || m.S21 == nil || m.S22 == nil {
		return fmt.Errorf("%w: missing block", ErrDimensionMismatch)
	}
	n := m.Dim()
	for _, b := range []*cmat.Dense{m.S11, m.S12, m.S21, m.S22} {
		if r, c := b.Dims(); r != n || c != n {
			return fmt.Errorf("%w: block %dx%d, want %dx%d", ErrDimensionMismatch, r, c, n, n)
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		S11: m.S11.Clone(),
		S12: m.S12.Clone(),
		S21: m.S21.Clone(),
		S22: m.S22.Clone(),
	}
}

// Star returns the Redheffer star product a ★ b, where a is the section
// traversed first.
func Star(a, b *Matrix) (*Matrix, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	n := a.Dim()
	if b.Dim() != n {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, n, b.Dim())
	}

	id := cmat.Identity(n)
	b1, err := cmat.Inverse(cmat.Sub(id, cmat.Mul(b.S11, a.S22)))
	if err != nil {
		return nil, fmt.Errorf("smatrix: star product: %w", err)
	}
	b2, err := cmat.Inverse(cmat.Sub(id, cmat.Mul(a.S22, b.S11)))
	if err != nil {
		return nil, fmt.Errorf("smatrix: star product: %w", err)
	}

	a12b1 := cmat.Mul(a.S12, b1)
	b21b2 := cmat.Mul(b.S21, b2)

	return &Matrix{
		S11: cmat.Add(a.S11, cmat.MulChain(a12b1, b.S11, a.S21)),
		S12: cmat.Mul(a12b1, b.S12),
		S21: cmat.Mul(b21b2, a.S21),
		S22: cmat.Add(b.S22, cmat.MulChain(b21b2, a.S22, b.S12)),
	}, nil
}

// Cascade folds the operands left to right: ms[0] ★ ms[1] ★ ...
func Cascade(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, ErrEmpty
	}
	out := ms[0]
	if err := out.Validate(); err != nil {
		return nil, err
	}
	for _, m := range ms[1:] {
		var err error
		out, err = Star(out, m)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MaxAbsDiff returns the largest element difference over all four blocks.
func MaxAbsDiff(a, b *Matrix) float64 {
	return max(
		cmat.MaxAbsDiff(a.S11, b.S11),
		cmat.MaxAbsDiff(a.S12, b.S12),
		cmat.MaxAbsDiff(a.S21, b.S21),
		cmat.MaxAbsDiff(a.S22, b.S22),
	)
}
