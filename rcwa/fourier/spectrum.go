package fourier

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

var (
	// ErrEvenGrid is returned for grids with an even number of rows or columns.
	ErrEvenGrid = errors.New("fourier: grid dimensions must be odd")
	// ErrHarmonicsExceedGrid is returned when the requested harmonic range
	// needs spectral offsets the grid does not resolve.
	ErrHarmonicsExceedGrid = errors.New("fourier: harmonic orders exceed grid resolution")
	// ErrInvalidShape is returned for empty grids or data of the wrong length.
	ErrInvalidShape = errors.New("fourier: invalid grid shape")
)

// Spectrum is the normalized 2-D DFT of a rows×cols grid.
type Spectrum struct {
	rows, cols int
	coef       []complex128 // unshifted, row-major
}

// NewSpectrum transforms the row-major grid data (rows×cols, both odd).
func NewSpectrum(rows, cols int, data []complex128) (*Spectrum, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d with %d values", ErrInvalidShape, rows, cols, len(data))
	}
	if rows%2 == 0 || cols%2 == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEvenGrid, rows, cols)
	}

	coef := make([]complex128, len(data))
	copy(coef, data)
	if err := forward(rows, cols, coef); err != nil {
		return nil, err
	}

	scale := complex(1/float64(rows*cols), 0)
	for i := range coef {
		coef[i] *= scale
	}

	return &Spectrum{rows: rows, cols: cols, coef: coef}, nil
}

// Dims returns the grid shape.
func (s *Spectrum) Dims() (rows, cols int) { return s.rows, s.cols }

// MaxOffset returns the largest resolved offset along rows (y) and columns (x).
func (s *Spectrum) MaxOffset() (dy, dx int) { return (s.rows - 1) / 2, (s.cols - 1) / 2 }

// At returns the coefficient at offset dy (rows) and dx (columns) from the
// zero order. Offsets must lie within MaxOffset.
func (s *Spectrum) At(dy, dx int) complex128 {
	r := mod(dy, s.rows)
	c := mod(dx, s.cols)
	return s.coef[r*s.cols+c]
}

// Centered returns the spectrum with the zero order in the middle, as a
// row-major rows×cols slice.
func (s *Spectrum) Centered() []complex128 {
	out := make([]complex128, len(s.coef))
	my, mx := s.MaxOffset()
	for r := 0; r < s.rows; r++ {
		for c := 0; c < s.cols; c++ {
			out[r*s.cols+c] = s.At(r-my, c-mx)
		}
	}
	return out
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// forward transforms the row-major rows×cols grid in place. Grids with a
// single row or column are contiguous and use a 1-D plan.
func forward(rows, cols int, coef []complex128) error {
	var err error
	switch {
	case rows == 1 && cols == 1:
		return nil
	case rows == 1 || cols == 1:
		var plan *algofft.Plan[complex128]
		if plan, err = algofft.NewPlan64(rows * cols); err == nil {
			err = plan.Forward(coef, append([]complex128(nil), coef...))
		}
	default:
		var plan *algofft.Plan2D[complex128]
		if plan, err = algofft.NewPlan2D64(rows, cols); err == nil {
			err = plan.Forward(coef, coef)
		}
	}
	if err != nil {
		return fmt.Errorf("fourier: forward transform %dx%d: %w", rows, cols, err)
	}
	return nil
}
