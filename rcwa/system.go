package rcwa

import (
	"fmt"
	"math/cmplx"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
)

// System holds the per-problem data shared by every layer: the harmonic
// grid, normalized transverse wavevectors, the vacuum gap basis and the
// longitudinal wavevectors of both half-spaces.
type System struct {
	param Parameter

	p, q   []int
	kx, ky []complex128

	w0, v0 *cmat.Dense
	w0Inv  *cmat.Dense
	v0Inv  *cmat.Dense

	kzRef, kzTrn []complex128
}

// NewSystem validates p and precomputes the shared data.
func NewSystem(p Parameter) (*System, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &System{param: p}
	s.buildGrid()

	vac, err := s.Eigenmodes(Scalar(1), Scalar(1), 1)
	if err != nil {
		return nil, fmt.Errorf("rcwa: vacuum basis: %w", err)
	}
	s.w0, s.v0 = vac.W, vac.V
	if s.w0Inv, err = invert(s.w0, vac.Diagonal, "W0"); err != nil {
		return nil, err
	}
	if s.v0Inv, err = invert(s.v0, false, "V0"); err != nil {
		return nil, err
	}

	s.kzRef = s.longitudinal(p.ErRef, p.UrRef)
	for i, v := range s.kzRef {
		s.kzRef[i] = -v
	}
	s.kzTrn = s.longitudinal(p.ErTrn, p.UrTrn)
	return s, nil
}

// buildGrid fills the order indices and normalized wavevectors. Orders are
// flattened row-major over (q, p).
func (s *System) buildGrid() {
	p := s.param
	n := p.Harmonics()
	ox := p.OrdersX()
	k0 := complex(p.K0(), 0)
	kxInc, kyInc := p.KxInc(), p.KyInc()

	s.p = make([]int, n)
	s.q = make([]int, n)
	s.kx = make([]complex128, n)
	s.ky = make([]complex128, n)
	for i := 0; i < n; i++ {
		pi := i%ox - p.HarmonicX
		qi := i/ox - p.HarmonicY
		fp, fq := complex(float64(pi), 0), complex(float64(qi), 0)
		s.p[i], s.q[i] = pi, qi
		s.kx[i] = (kxInc - fp*complex(p.T1x, 0) - fq*complex(p.T2x, 0)) / k0
		s.ky[i] = (kyInc - fp*complex(p.T1y, 0) - fq*complex(p.T2y, 0)) / k0
	}
}

// longitudinal returns conj(sqrt(conj(er·ur) − kx² − ky²)) per order.
func (s *System) longitudinal(er, ur complex128) []complex128 {
	pre := cmplx.Conj(er) * cmplx.Conj(ur)
	out := make([]complex128, len(s.kx))
	for i := range out {
		out[i] = cmplx.Conj(cmplx.Sqrt(pre - s.kx[i]*s.kx[i] - s.ky[i]*s.ky[i]))
	}
	return out
}

// Parameter returns the parameter the system was built from.
func (s *System) Parameter() Parameter { return s.param }

// Dim returns the scattering-matrix block size.
func (s *System) Dim() int { return s.param.Dim() }

// Orders returns the diffraction order indices (p, q) of every harmonic in
// flattened order.
func (s *System) Orders() (p, q []int) {
	return append([]int(nil), s.p...), append([]int(nil), s.q...)
}

// Kx returns the normalized x wavevectors of all harmonics.
func (s *System) Kx() []complex128 { return append([]complex128(nil), s.kx...) }

// Ky returns the normalized y wavevectors of all harmonics.
func (s *System) Ky() []complex128 { return append([]complex128(nil), s.ky...) }

// KzRef returns the normalized longitudinal wavevectors in the reflection
// medium (pointing backwards).
func (s *System) KzRef() []complex128 { return append([]complex128(nil), s.kzRef...) }

// KzTrn returns the normalized longitudinal wavevectors in the transmission
// medium.
func (s *System) KzTrn() []complex128 { return append([]complex128(nil), s.kzTrn...) }

func invert(m *cmat.Dense, identity bool, name string) (*cmat.Dense, error) {
	if identity {
		r, _ := m.Dims()
		return cmat.Identity(r), nil
	}
	inv, err := cmat.Inverse(m)
	if err != nil {
		return nil, singularError("inverting "+name, err)
	}
	return inv, nil
}
