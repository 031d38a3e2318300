package fourier

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-rcwa/internal/testutil"
)

func TestSpectrumOfConstantGrid(t *testing.T) {
	data := make([]complex128, 3*5)
	for i := range data {
		data[i] = 2.25
	}
	s, err := NewSpectrum(3, 5, data)
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}
	if got := s.At(0, 0); cmplx.Abs(got-2.25) > 1e-14 {
		t.Fatalf("zero order = %v, want 2.25", got)
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dy == 0 && dx == 0 {
				continue
			}
			if got := s.At(dy, dx); cmplx.Abs(got) > 1e-14 {
				t.Fatalf("At(%d,%d) = %v, want 0", dy, dx, got)
			}
		}
	}
}

func TestSpectrumOfCosine(t *testing.T) {
	// n + dn·cos(2πx/N) squared: ε = n² + dn²/2 + 2·n·dn·cos + dn²/2·cos(2·)
	const n, dn = 1.5, 0.1
	for _, cols := range []int{9, 101} {
		s, err := NewSpectrum(3, cols, testutil.SinusoidalIndex(3, cols, n, dn, 0))
		if err != nil {
			t.Fatalf("NewSpectrum: %v", err)
		}
		want := map[int]float64{
			0:  n*n + dn*dn/2,
			1:  n * dn,
			-1: n * dn,
			2:  dn * dn / 4,
			-2: dn * dn / 4,
			3:  0,
		}
		for dx, w := range want {
			if got := s.At(0, dx); cmplx.Abs(got-complex(w, 0)) > 1e-12 {
				t.Fatalf("cols=%d: At(0,%d) = %v, want %v", cols, dx, got, w)
			}
		}
		if got := s.At(1, 0); cmplx.Abs(got) > 1e-12 {
			t.Fatalf("cols=%d: At(1,0) = %v, want 0", cols, got)
		}
	}
}

func TestSpectrumShiftedCosineHasPhase(t *testing.T) {
	s, err := NewSpectrum(1, 7, testutil.SinusoidalIndex(1, 7, 0, 1, math.Pi/3))
	if err != nil {
		t.Fatal(err)
	}
	// cos² profile has its first harmonic at offset 2.
	plus := s.At(0, 2)
	minus := s.At(0, -2)
	if cmplx.Abs(plus-cmplx.Conj(minus)) > 1e-12 {
		t.Fatalf("real grid must give conjugate-symmetric spectrum: %v vs %v", plus, minus)
	}
	if cmplx.Abs(plus) < 0.2 {
		t.Fatalf("|At(0,2)| = %v, want 0.25", cmplx.Abs(plus))
	}
}

func TestCenteredMatchesAt(t *testing.T) {
	data := testutil.DeterministicComplex(3, 15)
	s, err := NewSpectrum(3, 5, data)
	if err != nil {
		t.Fatal(err)
	}
	c := s.Centered()
	if c[1*5+2] != s.At(0, 0) {
		t.Fatalf("center = %v, want %v", c[7], s.At(0, 0))
	}
	if c[0] != s.At(-1, -2) {
		t.Fatalf("corner = %v, want %v", c[0], s.At(-1, -2))
	}
}

func TestSpectrumMatchesDirectDFT(t *testing.T) {
	for _, shape := range []struct{ rows, cols int }{
		{3, 7}, {1, 11}, {5, 1}, {1, 1}, {3, 101}, {9, 13},
	} {
		rows, cols := shape.rows, shape.cols
		data := testutil.DeterministicComplex(int64(11+rows*cols), rows*cols)
		s, err := NewSpectrum(rows, cols, data)
		if err != nil {
			t.Fatalf("%dx%d: %v", rows, cols, err)
		}

		got := make([]complex128, 0, rows*cols)
		want := make([]complex128, 0, rows*cols)
		for ky := 0; ky < rows; ky++ {
			for kx := 0; kx < cols; kx++ {
				var w complex128
				for r := 0; r < rows; r++ {
					for c := 0; c < cols; c++ {
						angle := -2 * math.Pi * (float64(ky*r)/float64(rows) + float64(kx*c)/float64(cols))
						w += data[r*cols+c] * cmplx.Exp(complex(0, angle))
					}
				}
				want = append(want, w/complex(float64(rows*cols), 0))
				got = append(got, s.At(ky, kx))
			}
		}
		testutil.RequireComplexClose(t, fmt.Sprintf("%dx%d spectrum", rows, cols), got, want, 1e-12)
	}
}

func TestNewSpectrumRejectsEvenGrid(t *testing.T) {
	if _, err := NewSpectrum(2, 3, make([]complex128, 6)); !errors.Is(err, ErrEvenGrid) {
		t.Fatalf("err = %v, want ErrEvenGrid", err)
	}
	if _, err := NewSpectrum(3, 3, make([]complex128, 4)); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("err = %v, want ErrInvalidShape", err)
	}
}

func TestConvolutionToeplitzStructure(t *testing.T) {
	const nx, ny = 2, 1
	data := testutil.DeterministicComplex(5, 5*9)
	s, err := NewSpectrum(5, 9, data)
	if err != nil {
		t.Fatal(err)
	}
	c, err := Convolution(s, nx, ny)
	if err != nil {
		t.Fatalf("Convolution: %v", err)
	}
	ox := 2*nx + 1
	total := ox * (2*ny + 1)
	if r, cc := c.Dims(); r != total || cc != total {
		t.Fatalf("dims = %dx%d, want %dx%d", r, cc, total, total)
	}

	index := func(p, q int) int { return (q+ny)*ox + (p + nx) }
	for q := -ny; q <= ny; q++ {
		for p := -nx; p <= nx; p++ {
			for qq := -ny; qq <= ny; qq++ {
				for pp := -nx; pp <= nx; pp++ {
					got := c.At(index(p, q), index(pp, qq))
					if want := s.At(q-qq, p-pp); got != want {
						t.Fatalf("C[(%d,%d),(%d,%d)] = %v, want %v", p, q, pp, qq, got, want)
					}
				}
			}
		}
	}
	// Diagonal holds the cell average.
	for i := 0; i < total; i++ {
		if c.At(i, i) != s.At(0, 0) {
			t.Fatalf("diagonal %d = %v, want zero order", i, c.At(i, i))
		}
	}
}

func TestConvolutionRejectsTooManyHarmonics(t *testing.T) {
	s, err := NewSpectrum(3, 3, make([]complex128, 9))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Convolution(s, 1, 0); !errors.Is(err, ErrHarmonicsExceedGrid) {
		t.Fatalf("err = %v, want ErrHarmonicsExceedGrid", err)
	}
	if _, err := Convolution(s, 0, 0); err != nil {
		t.Fatalf("zero harmonics on 3x3 grid: %v", err)
	}
}

func TestScalarConvolution(t *testing.T) {
	c := ScalarConvolution(2+1i, 1, 0)
	if r, _ := c.Dims(); r != 3 {
		t.Fatalf("size = %d, want 3", r)
	}
	if c.At(1, 1) != 2+1i || c.At(0, 1) != 0 {
		t.Fatal("scalar convolution is not v·I")
	}
}
