package rcwa

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
	"github.com/cwbudde/algo-rcwa/rcwa/smatrix"
)

// Efficiencies holds diffraction efficiencies in percent, indexed
// [q+Ny][p+Nx] over the diffraction orders.
type Efficiencies struct {
	Rs, Rp [][]float64
	Ts, Tp [][]float64

	HarmonicX, HarmonicY int
}

// Efficiency extracts the per-order efficiencies of the global scattering
// matrix for s- and p-polarized incidence.
func Efficiency(sys *System, global *smatrix.Matrix) (*Efficiencies, error) {
	if err := global.Validate(); err != nil {
		return nil, configError("global scattering matrix", HintCheckParameter, err)
	}
	if global.Dim() != sys.Dim() {
		return nil, configError(fmt.Sprintf("global matrix dim %d, want %d", global.Dim(), sys.Dim()),
			HintCheckParameter, smatrix.ErrDimensionMismatch)
	}

	p := sys.param
	theta, phi := deg2rad(p.ThetaDeg), deg2rad(p.PhiDeg)
	sinPhi, cosPhi := math.Sincos(phi)
	cosTheta := math.Cos(theta)

	rs, ts, err := sys.polarization(global, -sinPhi, cosPhi)
	if err != nil {
		return nil, err
	}
	rp, tp, err := sys.polarization(global, cosTheta*cosPhi, cosTheta*sinPhi)
	if err != nil {
		return nil, err
	}

	ox := p.OrdersX()
	return &Efficiencies{
		Rs:        reshape(rs, ox),
		Rp:        reshape(rp, ox),
		Ts:        reshape(ts, ox),
		Tp:        reshape(tp, ox),
		HarmonicX: p.HarmonicX,
		HarmonicY: p.HarmonicY,
	}, nil
}

// polarization returns reflected and transmitted efficiencies per order for
// an incident field with transverse components (sx, sy) in the zero order.
func (s *System) polarization(global *smatrix.Matrix, sx, sy float64) (r, t []float64, err error) {
	n := len(s.kx)
	cInc := make([]complex128, 2*n)
	ix := (n - 1) / 2
	cInc[ix] = complex(sx, 0)
	cInc[ix+n] = complex(sy, 0)

	cRef := cmat.MulVec(global.S11, cInc)
	cTrn := cmat.MulVec(global.S21, cInc)

	rz, err := s.longitudinalField(cRef, s.kzRef)
	if err != nil {
		return nil, nil, err
	}
	tz, err := s.longitudinalField(cTrn, s.kzTrn)
	if err != nil {
		return nil, nil, err
	}

	p := s.param
	down := real(p.KzInc() / complex(p.K0(), 0) / p.UrRef)
	if down == 0 {
		return nil, nil, configError("incident wave has no normal flux", HintChangeAngle, ErrDegeneratePropagation)
	}

	wRef := make([]float64, n)
	wTrn := make([]float64, n)
	for i := 0; i < n; i++ {
		wRef[i] = real(-s.kzRef[i]/p.UrRef) / down
		wTrn[i] = real(s.kzTrn[i]/p.UrTrn) / down
	}

	r = make([]float64, n)
	accumulatePower(r, cRef[:n], cRef[n:], rz)
	weightPercent(r, wRef)

	t = make([]float64, n)
	accumulatePower(t, cTrn[:n], cTrn[n:], tz)
	weightPercent(t, wTrn)
	return r, t, nil
}

// longitudinalField returns z = −(kx·x + ky·y)/kz per order.
func (s *System) longitudinalField(c, kz []complex128) ([]complex128, error) {
	n := len(kz)
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		if kz[i] == 0 || cmplx.IsNaN(kz[i]) {
			return nil, configError("KZ is zero", HintChangeAngle, ErrDegeneratePropagation)
		}
		out[i] = -(s.kx[i]*c[i] + s.ky[i]*c[i+n]) / kz[i]
	}
	return out, nil
}

func reshape(v []float64, cols int) [][]float64 {
	rows := len(v) / cols
	out := make([][]float64, rows)
	for r := range out {
		out[r] = v[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return out
}

// Rows returns 2·Ny+1.
func (e *Efficiencies) Rows() int { return len(e.Rs) }

// Cols returns 2·Nx+1.
func (e *Efficiencies) Cols() int {
	if len(e.Rs) == 0 {
		return 0
	}
	return len(e.Rs[0])
}

// SumS returns the total s-polarized efficiency Σ(Rs+Ts).
func (e *Efficiencies) SumS() float64 { return sum2(e.Rs) + sum2(e.Ts) }

// SumP returns the total p-polarized efficiency Σ(Rp+Tp).
func (e *Efficiencies) SumP() float64 { return sum2(e.Rp) + sum2(e.Tp) }

func sum2(rows [][]float64) float64 {
	var s float64
	for _, r := range rows {
		s += floats.Sum(r)
	}
	return s
}

// OrderEfficiency holds the four efficiencies of one diffraction order.
type OrderEfficiency struct {
	Rs, Rp, Ts, Tp float64
}

// Order returns the efficiencies of diffraction order (p, q).
func (e *Efficiencies) Order(p, q int) (OrderEfficiency, bool) {
	r, c := q+e.HarmonicY, p+e.HarmonicX
	if r < 0 || r >= e.Rows() || c < 0 || c >= e.Cols() {
		return OrderEfficiency{}, false
	}
	return OrderEfficiency{Rs: e.Rs[r][c], Rp: e.Rp[r][c], Ts: e.Ts[r][c], Tp: e.Tp[r][c]}, true
}

// TableRow is one row of the order summary. Es and Ep are the energies
// Rs+Ts and Rp+Tp.
type TableRow struct {
	Label          string
	Order          int
	Es, Ep         float64
	Rs, Ts, Rp, Tp float64
}

// Table summarizes orders |p| ≤ orderMax of every row q. The first row
// holds the sums over the listed orders.
func (e *Efficiencies) Table(orderMax int) []TableRow {
	sum := TableRow{Label: "Sum"}
	var rows []TableRow
	for r := 0; r < e.Rows(); r++ {
		for c := 0; c < e.Cols(); c++ {
			p := c - e.HarmonicX
			if p < -orderMax || p > orderMax {
				continue
			}
			row := TableRow{
				Label: fmt.Sprint(p),
				Order: p,
				Rs:    e.Rs[r][c],
				Ts:    e.Ts[r][c],
				Rp:    e.Rp[r][c],
				Tp:    e.Tp[r][c],
			}
			row.Es = row.Rs + row.Ts
			row.Ep = row.Rp + row.Tp
			sum.Es += row.Es
			sum.Ep += row.Ep
			sum.Rs += row.Rs
			sum.Ts += row.Ts
			sum.Rp += row.Rp
			sum.Tp += row.Tp
			rows = append(rows, row)
		}
	}
	return append([]TableRow{sum}, rows...)
}
