package rcwa

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Parameter holds the incident wave, harmonic truncation, lattice and
// bounding media of one RCWA problem. Lengths share one unit (typically µm).
type Parameter struct {
	Wavelength float64
	ThetaDeg   float64
	PhiDeg     float64

	// HarmonicX and HarmonicY are the truncation orders Nx, Ny; the solver
	// keeps orders -N..N along each direction.
	HarmonicX int
	HarmonicY int

	// Reciprocal lattice vectors t1 and t2.
	T1x, T1y float64
	T2x, T2y float64

	ErRef, UrRef complex128
	ErTrn, UrTrn complex128

	Layers []Layer
}

// DefaultParameter returns a square lattice of unit period at 45° incidence
// with 11×7 harmonics between vacuum half-spaces.
func DefaultParameter() Parameter {
	return Parameter{
		Wavelength: 0.5,
		ThetaDeg:   45,
		HarmonicX:  5,
		HarmonicY:  3,
		T1x:        2 * math.Pi,
		T2y:        2 * math.Pi,
		ErRef:      1,
		UrRef:      1,
		ErTrn:      1,
		UrTrn:      1,
	}
}

// Validate checks the scalar fields.
func (p Parameter) Validate() error {
	switch {
	case !(p.Wavelength > 0) || math.IsInf(p.Wavelength, 0):
		return configError(fmt.Sprintf("wavelength %v", p.Wavelength), HintCheckParameter, ErrInvalidParameter)
	case p.HarmonicX < 0 || p.HarmonicY < 0:
		return configError(fmt.Sprintf("harmonic orders %d, %d", p.HarmonicX, p.HarmonicY), HintCheckParameter, ErrInvalidParameter)
	case math.IsNaN(p.ThetaDeg) || math.IsNaN(p.PhiDeg):
		return configError("incident angle is NaN", HintCheckParameter, ErrInvalidParameter)
	}
	for _, v := range []complex128{p.ErRef, p.UrRef, p.ErTrn, p.UrTrn} {
		if v == 0 || cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return configError(fmt.Sprintf("half-space material %v", v), HintCheckParameter, ErrInvalidParameter)
		}
	}
	return nil
}

// K0 returns the vacuum wavenumber 2π/λ.
func (p Parameter) K0() float64 { return 2 * math.Pi / p.Wavelength }

// NRef returns the refractive index of the reflection medium.
func (p Parameter) NRef() complex128 { return cmplx.Sqrt(p.ErRef * p.UrRef) }

func (p Parameter) incidentScale() complex128 {
	return complex(p.K0(), 0) * p.NRef()
}

// KxInc returns the x component of the incident wavevector.
func (p Parameter) KxInc() complex128 {
	theta, phi := deg2rad(p.ThetaDeg), deg2rad(p.PhiDeg)
	return p.incidentScale() * complex(math.Sin(theta)*math.Cos(phi), 0)
}

// KyInc returns the y component of the incident wavevector.
func (p Parameter) KyInc() complex128 {
	theta, phi := deg2rad(p.ThetaDeg), deg2rad(p.PhiDeg)
	return p.incidentScale() * complex(math.Sin(theta)*math.Sin(phi), 0)
}

// KzInc returns the z component of the incident wavevector.
func (p Parameter) KzInc() complex128 {
	return p.incidentScale() * complex(math.Cos(deg2rad(p.ThetaDeg)), 0)
}

// OrdersX returns 2·Nx+1.
func (p Parameter) OrdersX() int { return 2*p.HarmonicX + 1 }

// OrdersY returns 2·Ny+1.
func (p Parameter) OrdersY() int { return 2*p.HarmonicY + 1 }

// Harmonics returns the number of retained diffraction orders.
func (p Parameter) Harmonics() int { return p.OrdersX() * p.OrdersY() }

// Dim returns the block size of the scattering matrices.
func (p Parameter) Dim() int { return 2 * p.Harmonics() }

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
