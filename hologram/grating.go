package hologram

import (
	"math"
)

// Vec3 is a Cartesian vector.
type Vec3 [3]float64

// Sub returns v − w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Geometry is the recorded grating derived from the two recording beams.
type Geometry struct {
	// KRec1 and KRec2 are the recording wavevectors inside the medium.
	KRec1, KRec2 Vec3
	// G is the grating vector KRec1 − KRec2.
	G Vec3
	// GRot is G in the frame rotated about z so that its y component is 0.
	GRot Vec3
	// RotationDeg is the rotation angle atan2(gy, gx).
	RotationDeg float64
}

// Grating computes the recording geometry of p.
func (p Params) Grating() Geometry {
	k0 := 2 * math.Pi / p.WavelengthRec
	kn := p.N * k0

	beam := func(thetaDeg, phiDeg float64) Vec3 {
		st, ct := math.Sincos(deg2rad(thetaDeg))
		sp, cp := math.Sincos(deg2rad(phiDeg))
		vac := Vec3{st * cp * k0, st * sp * k0, ct * k0}
		kz := math.Sqrt(kn*kn-vac[0]*vac[0]-vac[1]*vac[1]) * sign(vac[2])
		return Vec3{vac[0], vac[1], kz}
	}

	var g Geometry
	g.KRec1 = beam(p.ThetaRec1, p.PhiRec1)
	g.KRec2 = beam(p.ThetaRec2, p.PhiRec2)
	g.G = g.KRec1.Sub(g.KRec2)
	g.GRot = Vec3{math.Hypot(g.G[0], g.G[1]), 0, g.G[2]}
	g.RotationDeg = math.Atan2(g.G[1], g.G[0]) * 180 / math.Pi
	return g
}

// CycleLength returns the grating period along z, 2π/|gz|.
func (p Params) CycleLength() (float64, error) {
	gz := math.Abs(p.Grating().G[2])
	if gz < gratingTolerance {
		return 0, configError("grating vector in z direction is too small", "Do not set nz_steps_per_cycle", ErrZeroGratingZ)
	}
	l := 2 * math.Pi / gz
	if !(l > 0) || math.IsInf(l, 0) {
		return 0, configError("cycle length is zero", "Check grating vector or parameters", ErrZeroCycleLength)
	}
	return l, nil
}

// CycleCount returns the number of grating cycles needed to cover
// thickness, rounded up.
func (p Params) CycleCount(thickness float64) (int, error) {
	l, err := p.CycleLength()
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(thickness / l)), nil
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
