package rcwa

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
	"github.com/cwbudde/algo-rcwa/rcwa/fourier"
)

const (
	// diagonalTolerance bounds the off-diagonal mass of Ω², relative to its
	// diagonal, below which the matrix is treated as diagonal.
	diagonalTolerance = 1e-8
	// degenerateTolerance is the smallest eigenvalue magnitude accepted.
	degenerateTolerance = 1e-8
)

// Eigenmodes is the eigen solution of one layer.
type Eigenmodes struct {
	Erc, Urc *cmat.Dense
	Q, P     *cmat.Dense
	W, V     *cmat.Dense

	// Lambda is the diagonal of Λ = sqrt(eig(Ω²)).
	Lambda []complex128
	// Arg is the diagonal of −Λ·k0·L.
	Arg []complex128
	// Diagonal is set when Ω² was diagonal and W is the identity.
	Diagonal bool
}

// Eigenmodes solves the eigen problem for a layer with permittivity er,
// permeability ur and the given thickness.
func (s *System) Eigenmodes(er, ur Material, thickness float64) (*Eigenmodes, error) {
	erc, err := s.convolution(er)
	if err != nil {
		return nil, err
	}
	urc, err := s.convolution(ur)
	if err != nil {
		return nil, err
	}

	ercInv, err := cmat.Inverse(erc)
	if err != nil {
		return nil, singularError("inverting permittivity convolution matrix", err)
	}
	urcInv, err := cmat.Inverse(urc)
	if err != nil {
		return nil, singularError("inverting permeability convolution matrix", err)
	}

	q := s.coupling(erc, urcInv)
	p := s.coupling(urc, ercInv)
	omega2 := cmat.Mul(p, q)

	e := &Eigenmodes{Erc: erc, Urc: urc, Q: q, P: p}

	var values []complex128
	diag := omega2.Diagonal()
	var diagSum float64
	for _, v := range diag {
		diagSum += cmplx.Abs(v)
	}
	if omega2.OffDiagonalSum() <= diagonalTolerance*math.Max(1, diagSum) {
		values = diag
		e.W = cmat.Identity(len(diag))
		e.Diagonal = true
	} else {
		eig, err := cmat.Eig(omega2)
		if err != nil {
			if errors.Is(err, cmat.ErrNoConvergence) {
				return nil, singularError("eigen decomposition", err)
			}
			return nil, configError("eigen decomposition", HintCheckParameter, err)
		}
		values = eig.Values
		e.W = eig.Vectors
	}

	for _, v := range values {
		if cmplx.Abs(v) < degenerateTolerance {
			return nil, configError("KZ is zero", HintChangeAngle, ErrDegeneratePropagation)
		}
	}

	k0 := complex(s.param.K0(), 0)
	l := complex(thickness, 0)
	e.Lambda = make([]complex128, len(values))
	e.Arg = make([]complex128, len(values))
	for i, v := range values {
		// +0 clears a negative zero so propagating modes get Λ = +i·|kz|.
		lam := cmplx.Sqrt(complex(real(v), imag(v)+0))
		e.Lambda[i] = lam
		e.Arg[i] = -lam * k0 * l
	}

	lamInv, err := cmat.InverseDiag(e.Lambda)
	if err != nil {
		return nil, configError("KZ is zero", HintChangeAngle, ErrDegeneratePropagation)
	}
	e.V = cmat.ScaleCols(cmat.Mul(q, e.W), lamInv)
	return e, nil
}

// coupling assembles the 2×2 block matrix
//
//	[ kx·b⁻¹·ky        a − kx·b⁻¹·kx ]
//	[ ky·b⁻¹·ky − a    −ky·b⁻¹·kx    ]
//
// which is Q for (a, b⁻¹) = (εc, μc⁻¹) and P for (μc, εc⁻¹).
func (s *System) coupling(a, bInv *cmat.Dense) *cmat.Dense {
	kx, ky := s.kx, s.ky
	b00 := cmat.ScaleCols(cmat.ScaleRows(kx, bInv), ky)
	b01 := cmat.Sub(a, cmat.ScaleCols(cmat.ScaleRows(kx, bInv), kx))
	b10 := cmat.Sub(cmat.ScaleCols(cmat.ScaleRows(ky, bInv), ky), a)
	b11 := cmat.Neg(cmat.ScaleCols(cmat.ScaleRows(ky, bInv), kx))
	return cmat.Block(b00, b01, b10, b11)
}

func (s *System) convolution(m Material) (*cmat.Dense, error) {
	nx, ny := s.param.HarmonicX, s.param.HarmonicY
	if m.IsScalar() {
		return fourier.ScalarConvolution(m.value, nx, ny), nil
	}
	spec, err := fourier.NewSpectrum(m.rows, m.cols, m.grid)
	if err != nil {
		return nil, configError("material spectrum", HintCheckParameter, err)
	}
	c, err := fourier.Convolution(spec, nx, ny)
	if err != nil {
		return nil, configError(fmt.Sprintf("convolution matrix for %dx%d grid", m.rows, m.cols), HintHarmonics, err)
	}
	return c, nil
}
