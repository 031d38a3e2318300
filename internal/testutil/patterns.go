package testutil

import (
	"math"
	"math/rand"
)

// SinusoidalIndex returns a rows×cols row-major permittivity grid for the
// index profile n + dn·cos(2π·x/cols + phase), constant along rows.
func SinusoidalIndex(rows, cols int, n, dn, phase float64) []complex128 {
	out := make([]complex128, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := n + dn*math.Cos(2*math.Pi*float64(c)/float64(cols)+phase)
			out[r*cols+c] = complex(v*v, 0)
		}
	}
	return out
}

// BinaryGrating returns a rows×cols grid with value hi for columns below
// fill·cols and lo elsewhere.
func BinaryGrating(rows, cols int, lo, hi complex128, fill float64) []complex128 {
	out := make([]complex128, rows*cols)
	edge := int(math.Round(fill * float64(cols)))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c < edge {
				out[r*cols+c] = hi
			} else {
				out[r*cols+c] = lo
			}
		}
	}
	return out
}

// DeterministicComplex generates uniformly distributed complex values in
// the unit square with a fixed seed.
func DeterministicComplex(seed int64, length int) []complex128 {
	out := make([]complex128, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return out
}
