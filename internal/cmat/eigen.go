package cmat

import (
	"math"
	"math/cmplx"
)

const maxSweepsPerEigenvalue = 60

// Eigen holds the eigen decomposition A·V = V·diag(Values) of a general
// complex square matrix. Eigenvectors are the columns of Vectors, each
// normalized to unit Euclidean length. The order of the eigenvalues is the
// order in which the QR iteration deflates them and is not canonicalized.
type Eigen struct {
	Values  []complex128
	Vectors *Dense
}

// Eig computes eigenvalues and right eigenvectors of a.
//
// The matrix is reduced to upper Hessenberg form with Householder
// reflections, then to upper triangular (Schur) form with single-shift
// complex QR sweeps. Eigenvectors are obtained by back substitution on the
// triangular factor and transformed back with the accumulated unitary
// similarity.
func Eig(a *Dense) (*Eigen, error) {
	if a.rows != a.cols {
		return nil, ErrNotSquare
	}
	if !a.IsFinite() {
		return nil, ErrNonFiniteValues
	}

	n := a.rows
	h := a.Clone()
	z := Identity(n)

	hessenberg(h, z)
	if err := schur(h, z); err != nil {
		return nil, err
	}

	values := h.Diagonal()
	vectors := Mul(z, triangularEigenvectors(h))
	for j := 0; j < n; j++ {
		var norm float64
		for i := 0; i < n; i++ {
			v := vectors.data[i*n+j]
			norm = math.Hypot(norm, cmplx.Abs(v))
		}
		if norm == 0 {
			continue
		}
		inv := complex(1/norm, 0)
		for i := 0; i < n; i++ {
			vectors.data[i*n+j] *= inv
		}
	}

	return &Eigen{Values: values, Vectors: vectors}, nil
}

// hessenberg reduces h to upper Hessenberg form in place and accumulates the
// reflections into z so that A = Z·H·Zᴴ.
func hessenberg(h, z *Dense) {
	n := h.rows
	v := make([]complex128, n)

	for k := 0; k < n-2; k++ {
		m := n - k - 1
		var norm float64
		for i := 0; i < m; i++ {
			norm = math.Hypot(norm, cmplx.Abs(h.data[(k+1+i)*n+k]))
		}
		if norm == 0 {
			continue
		}

		x0 := h.data[(k+1)*n+k]
		phase := complex(1, 0)
		if x0 != 0 {
			phase = x0 / complex(cmplx.Abs(x0), 0)
		}
		alpha := -phase * complex(norm, 0)

		v = v[:m]
		v[0] = x0 - alpha
		for i := 1; i < m; i++ {
			v[i] = h.data[(k+1+i)*n+k]
		}
		var vn2 float64
		for _, vi := range v {
			vn2 += real(vi)*real(vi) + imag(vi)*imag(vi)
		}
		if vn2 == 0 {
			continue
		}
		beta := complex(2/vn2, 0)

		// H = P·H
		for j := 0; j < n; j++ {
			var s complex128
			for i := 0; i < m; i++ {
				s += cmplx.Conj(v[i]) * h.data[(k+1+i)*n+j]
			}
			s *= beta
			for i := 0; i < m; i++ {
				h.data[(k+1+i)*n+j] -= s * v[i]
			}
		}
		// H = H·P, Z = Z·P
		for _, t := range []*Dense{h, z} {
			for r := 0; r < n; r++ {
				row := t.data[r*n : (r+1)*n]
				var s complex128
				for i := 0; i < m; i++ {
					s += row[k+1+i] * v[i]
				}
				s *= beta
				for i := 0; i < m; i++ {
					row[k+1+i] -= s * cmplx.Conj(v[i])
				}
			}
		}

		h.data[(k+1)*n+k] = alpha
		for i := k + 2; i < n; i++ {
			h.data[i*n+k] = 0
		}
	}
}

// schur drives the Hessenberg matrix h to upper triangular form in place.
func schur(h, z *Dense) error {
	n := h.rows
	var hnorm float64
	for _, v := range h.data {
		hnorm = math.Max(hnorm, cmplx.Abs(v))
	}
	if hnorm == 0 {
		return nil
	}

	at := func(i, j int) complex128 { return h.data[i*n+j] }

	hi := n - 1
	iter := 0
	for hi > 0 {
		// Find the start of the active unreduced block.
		lo := hi
		for lo > 0 {
			s := cmplx.Abs(at(lo-1, lo-1)) + cmplx.Abs(at(lo, lo))
			if s == 0 {
				s = hnorm
			}
			if cmplx.Abs(at(lo, lo-1)) <= ulp*s {
				h.data[lo*n+lo-1] = 0
				break
			}
			lo--
		}

		if lo == hi {
			hi--
			iter = 0
			continue
		}

		iter++
		if iter > maxSweepsPerEigenvalue {
			return ErrNoConvergence
		}

		var mu complex128
		switch iter {
		case 10, 20, 30:
			// Exceptional shift to break cycles.
			ex := cmplx.Abs(at(hi, hi-1))
			if hi-2 >= lo {
				ex += cmplx.Abs(at(hi-1, hi-2))
			}
			mu = at(hi, hi) + complex(ex, 0)
		default:
			mu = wilkinsonShift(at(hi-1, hi-1), at(hi-1, hi), at(hi, hi-1), at(hi, hi))
		}

		qrSweep(h, z, lo, hi, mu)
	}

	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			h.data[i*n+j] = 0
		}
	}
	return nil
}

// wilkinsonShift returns the eigenvalue of [a b; c d] closer to d.
func wilkinsonShift(a, b, c, d complex128) complex128 {
	half := (a - d) / 2
	disc := cmplx.Sqrt(half*half + b*c)
	mid := (a + d) / 2
	l1, l2 := mid+disc, mid-disc
	if cmplx.Abs(l1-d) <= cmplx.Abs(l2-d) {
		return l1
	}
	return l2
}

// qrSweep performs one shifted QR step on the active block h[lo:hi+1] using
// Givens rotations.
func qrSweep(h, z *Dense, lo, hi int, mu complex128) {
	n := h.rows

	for i := lo; i <= hi; i++ {
		h.data[i*n+i] -= mu
	}

	cs := make([]float64, hi-lo)
	sn := make([]complex128, hi-lo)

	for k := lo; k < hi; k++ {
		c, s := givens(h.data[k*n+k], h.data[(k+1)*n+k])
		cs[k-lo], sn[k-lo] = c, s
		for j := k; j < n; j++ {
			t1 := h.data[k*n+j]
			t2 := h.data[(k+1)*n+j]
			h.data[k*n+j] = complex(c, 0)*t1 + s*t2
			h.data[(k+1)*n+j] = -cmplx.Conj(s)*t1 + complex(c, 0)*t2
		}
	}

	for k := lo; k < hi; k++ {
		c, s := cs[k-lo], sn[k-lo]
		last := min(k+2, hi)
		for i := 0; i <= last; i++ {
			u1 := h.data[i*n+k]
			u2 := h.data[i*n+k+1]
			h.data[i*n+k] = u1*complex(c, 0) + u2*cmplx.Conj(s)
			h.data[i*n+k+1] = -u1*s + u2*complex(c, 0)
		}
		for i := 0; i < n; i++ {
			u1 := z.data[i*n+k]
			u2 := z.data[i*n+k+1]
			z.data[i*n+k] = u1*complex(c, 0) + u2*cmplx.Conj(s)
			z.data[i*n+k+1] = -u1*s + u2*complex(c, 0)
		}
	}

	for i := lo; i <= hi; i++ {
		h.data[i*n+i] += mu
	}
}

// givens returns c (real) and s such that
// [c s; -conj(s) c]·[a; b] = [r; 0].
func givens(a, b complex128) (float64, complex128) {
	if b == 0 {
		return 1, 0
	}
	if a == 0 {
		return 0, cmplx.Conj(b) / complex(cmplx.Abs(b), 0)
	}
	absA := cmplx.Abs(a)
	r := math.Hypot(absA, cmplx.Abs(b))
	c := absA / r
	s := (a / complex(absA, 0)) * cmplx.Conj(b) / complex(r, 0)
	return c, s
}

// triangularEigenvectors returns the eigenvectors of the upper triangular t
// as columns of a unit upper triangular matrix.
func triangularEigenvectors(t *Dense) *Dense {
	n := t.rows
	out := New(n, n)

	var tnorm float64
	for _, v := range t.data {
		tnorm = math.Max(tnorm, cmplx.Abs(v))
	}
	smallnum := math.SmallestNonzeroFloat64 * float64(n) / ulp

	x := make([]complex128, n)
	for k := 0; k < n; k++ {
		lambda := t.data[k*n+k]
		smin := math.Max(ulp*math.Max(cmplx.Abs(lambda), tnorm), smallnum)

		clear(x)
		x[k] = 1
		for i := k - 1; i >= 0; i-- {
			var s complex128
			for j := i + 1; j <= k; j++ {
				s += t.data[i*n+j] * x[j]
			}
			d := t.data[i*n+i] - lambda
			if cmplx.Abs(d) < smin {
				d = complex(smin, 0)
			}
			x[i] = -s / d
		}
		for i := 0; i <= k; i++ {
			out.data[i*n+k] = x[i]
		}
	}
	return out
}
