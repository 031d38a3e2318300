package fourier

import (
	"fmt"

	"github.com/cwbudde/algo-rcwa/internal/cmat"
)

// Convolution builds the convolution matrix for harmonic ranges ±nx and ±ny.
//
// Harmonics are flattened row-major over the (2ny+1)×(2nx+1) order grid:
// index n = (q+ny)·(2nx+1) + (p+nx). The element coupling order (p,q) to
// (p′,q′) is the spectral coefficient at offset (q−q′, p−p′).
func Convolution(s *Spectrum, nx, ny int) (*cmat.Dense, error) {
	if nx < 0 || ny < 0 {
		return nil, fmt.Errorf("%w: negative harmonic order", ErrHarmonicsExceedGrid)
	}
	my, mx := s.MaxOffset()
	if 2*nx > mx || 2*ny > my {
		return nil, fmt.Errorf("%w: orders ±%d×±%d need a grid of at least %dx%d, have %dx%d",
			ErrHarmonicsExceedGrid, nx, ny, 4*ny+1, 4*nx+1, s.rows, s.cols)
	}

	ox := 2*nx + 1
	oy := 2*ny + 1
	total := ox * oy
	c := cmat.New(total, total)

	for row := 0; row < total; row++ {
		p := row%ox - nx
		q := row/ox - ny
		dst := c.Row(row)
		for col := 0; col < total; col++ {
			pp := col%ox - nx
			qq := col/ox - ny
			dst[col] = s.At(q-qq, p-pp)
		}
	}
	return c, nil
}

// ScalarConvolution returns v·I of size (2nx+1)(2ny+1), the convolution
// matrix of a homogeneous material.
func ScalarConvolution(v complex128, nx, ny int) *cmat.Dense {
	n := (2*nx + 1) * (2*ny + 1)
	d := make([]complex128, n)
	for i := range d {
		d[i] = v
	}
	return cmat.Diag(d)
}
