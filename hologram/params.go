package hologram

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-rcwa/rcwa"
)

var (
	// ErrZeroGratingZ is returned when a grating cycle along z is needed but
	// the grating vector has no z component.
	ErrZeroGratingZ = errors.New("hologram: grating vector in z direction is too small")
	// ErrZeroCycleLength is returned when the cycle length is not a positive
	// finite number.
	ErrZeroCycleLength = errors.New("hologram: cycle length is zero")
	// ErrTooManySteps is returned when a cycle sweep needs more steps than
	// allowed.
	ErrTooManySteps = errors.New("hologram: too many steps")
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("hologram: invalid parameters")
)

// gratingTolerance is the smallest grating component treated as non-zero.
const gratingTolerance = 1e-7

// Params describes the reading wave, the recording geometry and the slicing
// of a volume hologram. Angles are in degrees, lengths in the wavelength
// unit.
type Params struct {
	// Reading wave.
	Wavelength    float64
	ThetaDeg      float64
	PhiDeg        float64
	HarmonicOrder int

	ErTrn, UrTrn complex128

	// Recording beams.
	ThetaRec1, PhiRec1 float64
	ThetaRec2, PhiRec2 float64
	WavelengthRec      float64

	// Recorded medium.
	N, DN float64

	// Slicing.
	NZ            int
	Thickness     float64
	StepsPerCycle bool
	AddARLayer    bool
}

// DefaultParams returns a transmission hologram recorded at 30° and 20°.
func DefaultParams() Params {
	return Params{
		Wavelength:    0.5,
		ThetaDeg:      45,
		HarmonicOrder: 5,
		ErTrn:         1,
		UrTrn:         1,
		ThetaRec1:     30,
		ThetaRec2:     20,
		WavelengthRec: 0.5,
		N:             1.5,
		DN:            0.01,
		NZ:            101,
		Thickness:     20,
		AddARLayer:    true,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	var problem string
	switch {
	case !(p.Wavelength > 0) || math.IsInf(p.Wavelength, 0):
		problem = fmt.Sprintf("wavelength %v", p.Wavelength)
	case !(p.WavelengthRec > 0) || math.IsInf(p.WavelengthRec, 0):
		problem = fmt.Sprintf("recording wavelength %v", p.WavelengthRec)
	case !(p.N >= 1) || math.IsInf(p.N, 0):
		problem = fmt.Sprintf("refractive index %v", p.N)
	case math.IsNaN(p.DN) || math.IsInf(p.DN, 0):
		problem = fmt.Sprintf("index modulation %v", p.DN)
	case p.NZ < 1:
		problem = fmt.Sprintf("n_z %d", p.NZ)
	case p.HarmonicOrder < 0:
		problem = fmt.Sprintf("harmonic order %d", p.HarmonicOrder)
	case !(p.Thickness >= 0) || math.IsInf(p.Thickness, 0):
		problem = fmt.Sprintf("thickness %v", p.Thickness)
	case cmplx.IsNaN(p.ErTrn) || cmplx.IsNaN(p.UrTrn) || p.ErTrn == 0 || p.UrTrn == 0:
		problem = "transmission medium"
	}
	for _, a := range []float64{p.ThetaDeg, p.PhiDeg, p.ThetaRec1, p.ThetaRec2, p.PhiRec1, p.PhiRec2} {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			problem = "angle is not finite"
		}
	}
	if problem != "" {
		return configError(problem, rcwa.HintCheckParameter, ErrInvalidParams)
	}
	return nil
}

func configError(msg, hint string, err error) error {
	return &rcwa.Error{Kind: rcwa.KindConfig, Message: msg, Hint: hint, Err: err}
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
