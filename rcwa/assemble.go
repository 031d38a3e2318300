package rcwa

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
	"github.com/cwbudde/algo-rcwa/rcwa/smatrix"
)

// Keys of the half-space matrices in the map returned by AllMatrices.
const (
	KeyRef = "S_ref"
	KeyTrn = "S_trn"
)

// LayerMatrix returns the scattering matrix of layer l embedded in vacuum
// gaps.
func (s *System) LayerMatrix(l Layer) (*smatrix.Matrix, error) {
	e, err := s.Eigenmodes(l.Er, l.Ur, l.Thickness)
	if err != nil {
		return nil, fmt.Errorf("rcwa: layer %q: %w", l.ID, err)
	}
	m, err := s.layerMatrix(e)
	if err != nil {
		return nil, fmt.Errorf("rcwa: layer %q: %w", l.ID, err)
	}
	return m, nil
}

func (s *System) layerMatrix(e *Eigenmodes) (*smatrix.Matrix, error) {
	wInv, err := invert(e.W, e.Diagonal, "W")
	if err != nil {
		return nil, err
	}
	vInv, err := invert(e.V, false, "V")
	if err != nil {
		return nil, err
	}

	wInvW0 := cmat.Mul(wInv, s.w0)
	vInvV0 := cmat.Mul(vInv, s.v0)
	a := cmat.Add(wInvW0, vInvV0)
	b := cmat.Sub(wInvW0, vInvV0)
	aInv, err := invert(a, false, "A")
	if err != nil {
		return nil, err
	}

	x := make([]complex128, len(e.Arg))
	for i, v := range e.Arg {
		x[i] = cmplx.Exp(v)
	}

	// X·B·A⁻¹·X
	xbaInvX := cmat.ScaleCols(cmat.Mul(cmat.ScaleRows(x, b), aInv), x)

	mul, err := invert(cmat.Sub(a, cmat.Mul(xbaInvX, b)), false, "A − XBA⁻¹XB")
	if err != nil {
		return nil, err
	}

	s11 := cmat.Mul(mul, cmat.Sub(cmat.Mul(xbaInvX, a), b))
	s12 := cmat.Mul(mul, cmat.ScaleRows(x, cmat.Sub(a, cmat.MulChain(b, aInv, b))))

	return &smatrix.Matrix{S11: s11, S12: s12, S21: s12.Clone(), S22: s11.Clone()}, nil
}

// halfSpace returns A = W0⁻¹W + V0⁻¹V and B = W0⁻¹W − V0⁻¹V for a
// homogeneous half-space, together with A⁻¹.
func (s *System) halfSpace(er, ur complex128, name string) (a, b, aInv *cmat.Dense, err error) {
	e, err := s.Eigenmodes(Scalar(er), Scalar(ur), 1)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("rcwa: %s medium: %w", name, err)
	}
	w0InvW := cmat.Mul(s.w0Inv, e.W)
	v0InvV := cmat.Mul(s.v0Inv, e.V)
	a = cmat.Add(w0InvW, v0InvV)
	b = cmat.Sub(w0InvW, v0InvV)
	if aInv, err = invert(a, false, "A_"+name); err != nil {
		return nil, nil, nil, err
	}
	return a, b, aInv, nil
}

// ReflectionMatrix returns the scattering matrix connecting the reflection
// half-space to the first vacuum gap.
func (s *System) ReflectionMatrix() (*smatrix.Matrix, error) {
	a, b, aInv, err := s.halfSpace(s.param.ErRef, s.param.UrRef, "ref")
	if err != nil {
		return nil, err
	}
	return &smatrix.Matrix{
		S11: cmat.Neg(cmat.Mul(aInv, b)),
		S12: cmat.Scale(2, aInv),
		S21: cmat.Scale(0.5, cmat.Sub(a, cmat.MulChain(b, aInv, b))),
		S22: cmat.Mul(b, aInv),
	}, nil
}

// TransmissionMatrix returns the scattering matrix connecting the last
// vacuum gap to the transmission half-space.
func (s *System) TransmissionMatrix() (*smatrix.Matrix, error) {
	a, b, aInv, err := s.halfSpace(s.param.ErTrn, s.param.UrTrn, "trn")
	if err != nil {
		return nil, err
	}
	return &smatrix.Matrix{
		S11: cmat.Mul(b, aInv),
		S12: cmat.Scale(0.5, cmat.Sub(a, cmat.MulChain(b, aInv, b))),
		S21: cmat.Scale(2, aInv),
		S22: cmat.Neg(cmat.Mul(aInv, b)),
	}, nil
}

// AllMatrices returns the scattering matrix of every layer of the parameter
// keyed by layer ID, plus the half-space matrices under KeyRef and KeyTrn.
func (s *System) AllMatrices() (map[string]*smatrix.Matrix, error) {
	out := make(map[string]*smatrix.Matrix, len(s.param.Layers)+2)
	for _, l := range s.param.Layers {
		if l.ID == KeyRef || l.ID == KeyTrn {
			return nil, configError(fmt.Sprintf("layer id %q is reserved", l.ID), HintCheckParameter, ErrDuplicateLayerID)
		}
		if _, dup := out[l.ID]; dup {
			return nil, configError(fmt.Sprintf("layer id %q", l.ID), HintCheckParameter, ErrDuplicateLayerID)
		}
		m, err := s.LayerMatrix(l)
		if err != nil {
			return nil, err
		}
		out[l.ID] = m
	}

	ref, err := s.ReflectionMatrix()
	if err != nil {
		return nil, err
	}
	trn, err := s.TransmissionMatrix()
	if err != nil {
		return nil, err
	}
	out[KeyRef] = ref
	out[KeyTrn] = trn
	return out, nil
}

// DeviceMatrix cascades the layers of the parameter in order.
func (s *System) DeviceMatrix() (*smatrix.Matrix, error) {
	device := smatrix.Unity(s.Dim())
	for _, l := range s.param.Layers {
		m, err := s.LayerMatrix(l)
		if err != nil {
			return nil, err
		}
		if device, err = Star(device, m); err != nil {
			return nil, err
		}
	}
	return device, nil
}

// GlobalMatrix returns ref ★ device ★ trn.
func GlobalMatrix(ref, device, trn *smatrix.Matrix) (*smatrix.Matrix, error) {
	g, err := smatrix.Cascade(ref, device, trn)
	if err != nil {
		return nil, classifyStar(err)
	}
	return g, nil
}

// Star is smatrix.Star with singular failures classified as KindSingular.
func Star(a, b *smatrix.Matrix) (*smatrix.Matrix, error) {
	m, err := smatrix.Star(a, b)
	if err != nil {
		return nil, classifyStar(err)
	}
	return m, nil
}

func classifyStar(err error) error {
	if errors.Is(err, cmat.ErrSingular) {
		return singularError("star product", err)
	}
	return configError("star product", HintCheckParameter, err)
}
