package hologram

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cwbudde/algo-rcwa/rcwa"
	"github.com/cwbudde/algo-rcwa/rcwa/smatrix"
)

const (
	// samplesPerPeriod is the x resolution of one grating period.
	samplesPerPeriod = 101
	// samplesY is the number of identical rows along y.
	samplesY = 3
	// arLayerID names the anti-reflection layer.
	arLayerID = "ar"
)

// Model is a volume hologram ready for evaluation. It is immutable and safe
// for concurrent use.
type Model struct {
	params Params
	geo    Geometry
	sys    *rcwa.System

	// cycle is the grating period along z, zero when not in cycle mode.
	cycle float64
	// dz is the slice thickness.
	dz float64
}

// New validates p and prepares the RCWA system of the hologram.
func New(p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := &Model{params: p, geo: p.Grating()}
	if p.StepsPerCycle {
		cycle, err := p.CycleLength()
		if err != nil {
			return nil, err
		}
		m.cycle = cycle
		m.dz = cycle / float64(p.NZ)
	} else {
		m.dz = p.Thickness / float64(p.NZ)
	}

	sys, err := rcwa.NewSystem(m.parameter())
	if err != nil {
		return nil, err
	}
	m.sys = sys
	return m, nil
}

// parameter returns the RCWA parameter in the rotated frame.
func (m *Model) parameter() rcwa.Parameter {
	p := m.params
	return rcwa.Parameter{
		Wavelength: p.Wavelength,
		ThetaDeg:   p.ThetaDeg,
		PhiDeg:     p.PhiDeg - m.geo.RotationDeg,
		HarmonicX:  p.HarmonicOrder,
		HarmonicY:  0,
		T1x:        m.geo.GRot[0],
		ErRef:      1,
		UrRef:      1,
		ErTrn:      p.ErTrn,
		UrTrn:      p.UrTrn,
	}
}

// Params returns the model parameters.
func (m *Model) Params() Params { return m.params }

// Geometry returns the recording geometry.
func (m *Model) Geometry() Geometry { return m.geo }

// System returns the underlying RCWA system.
func (m *Model) System() *rcwa.System { return m.sys }

// SliceThickness returns the thickness of one slice.
func (m *Model) SliceThickness() float64 { return m.dz }

// CycleLength returns the grating period along z.
func (m *Model) CycleLength() (float64, error) {
	if m.cycle > 0 {
		return m.cycle, nil
	}
	return m.params.CycleLength()
}

// CycleCount returns ⌈thickness/cycle⌉.
func (m *Model) CycleCount(thickness float64) (int, error) {
	return m.params.CycleCount(thickness)
}

// Slices returns the NZ layers of the recorded index profile. Slice i
// samples the profile at z = i·dz.
func (m *Model) Slices() ([]rcwa.Layer, error) {
	p := m.params
	gx, gz := m.geo.GRot[0], m.geo.GRot[2]

	permittivity := func(phase float64) complex128 {
		n := p.N + p.DN*math.Cos(phase)
		return complex(n*n, 0)
	}

	layers := make([]rcwa.Layer, p.NZ)
	for i := range layers {
		z := float64(i) * m.dz
		id := strconv.Itoa(i)

		var er rcwa.Material
		if math.Abs(gx) < gratingTolerance {
			// No lateral modulation: each slice is homogeneous.
			er = rcwa.Scalar(permittivity(gz * z))
		} else {
			dx := 2 * math.Pi / gx / samplesPerPeriod
			data := make([]complex128, samplesY*samplesPerPeriod)
			for c := 0; c < samplesPerPeriod; c++ {
				v := permittivity(gx*float64(c)*dx + gz*z)
				for r := 0; r < samplesY; r++ {
					data[r*samplesPerPeriod+c] = v
				}
			}
			var err error
			if er, err = rcwa.Grid(samplesY, samplesPerPeriod, data); err != nil {
				return nil, err
			}
		}

		l, err := rcwa.NewLayer(id, er, rcwa.Scalar(1), m.dz)
		if err != nil {
			return nil, err
		}
		layers[i] = l
	}
	return layers, nil
}

// ARLayer returns the quarter-wave anti-reflection layer with index √n for
// the recording wavelength at the reading angle.
func (m *Model) ARLayer() (rcwa.Layer, error) {
	p := m.params
	nAR := math.Sqrt(p.N)
	sinAR := math.Sin(deg2rad(p.ThetaDeg)) / nAR
	cosAR := math.Sqrt(1 - sinAR*sinAR)
	thickness := p.WavelengthRec / (4 * nAR * cosAR)
	return rcwa.HomogeneousLayer(arLayerID, complex(nAR*nAR, 0), 1, thickness)
}

// Step is the device matrix of the first slices up to Length.
type Step struct {
	Length float64
	Device *smatrix.Matrix
}

// Accumulated holds the prefix cascades of the slices together with the
// boundary matrices.
type Accumulated struct {
	// Steps[i] is the cascade of the first i slices; Steps[0] is unity.
	Steps []Step
	// Dz is the slice thickness, so Steps[i].Length is i·Dz.
	Dz   float64
	Full *smatrix.Matrix
	Ref  *smatrix.Matrix
	Trn  *smatrix.Matrix
	// AR is nil when no anti-reflection layer is used.
	AR *smatrix.Matrix
}

// Closest returns the step whose length is nearest to length. Ties resolve
// to the shorter step and lengths outside the stack clamp to its ends.
func (a *Accumulated) Closest(length float64) Step {
	last := len(a.Steps) - 1
	if a.Dz <= 0 || !(length > 0) {
		return a.Steps[0]
	}
	i := math.Ceil(length/a.Dz - 0.5)
	if i >= float64(last) {
		return a.Steps[last]
	}
	return a.Steps[int(i)]
}

// Accumulate computes the scattering matrix of every slice and their prefix
// cascades.
func (m *Model) Accumulate() (*Accumulated, error) {
	slices, err := m.Slices()
	if err != nil {
		return nil, err
	}

	acc := &Accumulated{Steps: make([]Step, 0, len(slices)+1), Dz: m.dz}
	device := smatrix.Unity(m.sys.Dim())
	acc.Steps = append(acc.Steps, Step{Device: device})

	var length float64
	for _, l := range slices {
		s, err := m.sys.LayerMatrix(l)
		if err != nil {
			return nil, err
		}
		if device, err = rcwa.Star(device, s); err != nil {
			return nil, err
		}
		length += l.Thickness
		acc.Steps = append(acc.Steps, Step{Length: length, Device: device})
	}
	acc.Full = device

	if acc.Ref, err = m.sys.ReflectionMatrix(); err != nil {
		return nil, err
	}
	if acc.Trn, err = m.sys.TransmissionMatrix(); err != nil {
		return nil, err
	}
	if m.params.AddARLayer {
		ar, err := m.ARLayer()
		if err != nil {
			return nil, err
		}
		if acc.AR, err = m.sys.LayerMatrix(ar); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Global embeds device between the anti-reflection layers (if any) and the
// half-spaces.
func (m *Model) Global(acc *Accumulated, device *smatrix.Matrix) (*smatrix.Matrix, error) {
	var err error
	if acc.AR != nil {
		if device, err = rcwa.Star(device, acc.AR); err != nil {
			return nil, err
		}
		if device, err = rcwa.Star(acc.AR, device); err != nil {
			return nil, err
		}
	}
	if device, err = rcwa.Star(device, acc.Trn); err != nil {
		return nil, err
	}
	return rcwa.Star(acc.Ref, device)
}

// Calc returns the efficiencies of the hologram at its configured
// thickness.
//
// In cycle mode the one-cycle matrix is raised to ⌊thickness/cycle⌋ by
// repeated doubling and the remainder is taken from the nearest
// precomputed slice prefix.
func (m *Model) Calc() (*rcwa.Efficiencies, error) {
	acc, err := m.Accumulate()
	if err != nil {
		return nil, err
	}

	device := acc.Full
	if m.params.StepsPerCycle {
		if device, err = m.cycles(acc); err != nil {
			return nil, err
		}
	}

	global, err := m.Global(acc, device)
	if err != nil {
		return nil, err
	}
	return rcwa.Efficiency(m.sys, global)
}

func (m *Model) cycles(acc *Accumulated) (*smatrix.Matrix, error) {
	n := int(m.params.Thickness / m.cycle)
	rest := m.params.Thickness - float64(n)*m.cycle

	device := smatrix.Unity(m.sys.Dim())
	power := acc.Full
	var err error
	for bit := 0; n>>bit > 0; bit++ {
		if bit > 0 {
			if power, err = rcwa.Star(power, power); err != nil {
				return nil, fmt.Errorf("hologram: doubling %d: %w", bit, err)
			}
		}
		if n&(1<<bit) != 0 {
			if device, err = rcwa.Star(device, power); err != nil {
				return nil, err
			}
		}
	}
	return rcwa.Star(device, acc.Closest(rest).Device)
}

// Series is the efficiency as a function of thickness.
type Series struct {
	Lengths      []float64
	Efficiencies []*rcwa.Efficiencies
}

// PerStep returns the efficiencies after every slice of a hologram of the
// given thickness cut into nz slices, starting with thickness 0.
func (m *Model) PerStep(nz int, thickness float64) (*Series, error) {
	p := m.params
	p.NZ = nz
	p.Thickness = thickness
	p.StepsPerCycle = false

	mm, err := New(p)
	if err != nil {
		return nil, err
	}
	acc, err := mm.Accumulate()
	if err != nil {
		return nil, err
	}

	out := &Series{
		Lengths:      make([]float64, 0, len(acc.Steps)),
		Efficiencies: make([]*rcwa.Efficiencies, 0, len(acc.Steps)),
	}
	for _, s := range acc.Steps {
		global, err := mm.Global(acc, s.Device)
		if err != nil {
			return nil, err
		}
		eff, err := rcwa.Efficiency(mm.sys, global)
		if err != nil {
			return nil, err
		}
		out.Lengths = append(out.Lengths, s.Length)
		out.Efficiencies = append(out.Efficiencies, eff)
	}
	return out, nil
}
