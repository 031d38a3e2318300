package rcwa

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-rcwa/rcwa/fourier"
)

// Material is a relative permittivity or permeability: either one value for
// a homogeneous layer or a row-major grid sampling one lattice cell.
//
// Fields propagate as exp(−Λ·k0·z) with Λ = +i·|kz| for lossless modes, so
// an absorbing material has a negative imaginary part (2.25−0.2i) and a
// positive imaginary part describes gain.
type Material struct {
	value      complex128
	rows, cols int
	grid       []complex128
}

// Scalar returns a homogeneous material.
func Scalar(v complex128) Material { return Material{value: v} }

// Grid returns a patterned material sampled on a rows×cols grid. Both
// dimensions must be odd. The data is copied.
func Grid(rows, cols int, data []complex128) (Material, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return Material{}, configError(
			fmt.Sprintf("grid %dx%d with %d values", rows, cols, len(data)),
			HintCheckParameter, fourier.ErrInvalidShape)
	}
	if rows%2 == 0 || cols%2 == 0 {
		return Material{}, configError(
			fmt.Sprintf("grid %dx%d", rows, cols), HintCheckParameter, fourier.ErrEvenGrid)
	}
	for i, v := range data {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return Material{}, configError(fmt.Sprintf("grid value %d is %v", i, v), HintCheckParameter, ErrInvalidParameter)
		}
	}
	g := make([]complex128, len(data))
	copy(g, data)
	return Material{rows: rows, cols: cols, grid: g}, nil
}

// IsScalar reports whether the material is homogeneous.
func (m Material) IsScalar() bool { return m.grid == nil }

// Value returns the homogeneous value, or the cell average of a grid.
func (m Material) Value() complex128 {
	if m.grid == nil {
		return m.value
	}
	var sum complex128
	for _, v := range m.grid {
		sum += v
	}
	return sum / complex(float64(len(m.grid)), 0)
}

// Dims returns the grid shape, or (0, 0) for a scalar.
func (m Material) Dims() (rows, cols int) { return m.rows, m.cols }

// At returns the grid value at row r, column c.
func (m Material) At(r, c int) complex128 { return m.grid[r*m.cols+c] }

// Layer is one slab of the stack: permittivity, permeability and thickness
// (in the wavelength unit). ID identifies the layer in scattering-matrix
// maps and caches.
type Layer struct {
	ID        string
	Er, Ur    Material
	Thickness float64
}

// NewLayer validates and returns a layer. Lossy materials follow the sign
// convention documented on Material.
func NewLayer(id string, er, ur Material, thickness float64) (Layer, error) {
	if thickness < 0 || math.IsNaN(thickness) || math.IsInf(thickness, 0) {
		return Layer{}, configError(fmt.Sprintf("layer %q thickness %v", id, thickness), HintCheckParameter, ErrInvalidParameter)
	}
	return Layer{ID: id, Er: er, Ur: ur, Thickness: thickness}, nil
}

// HomogeneousLayer is a shorthand for a layer with scalar materials.
func HomogeneousLayer(id string, er, ur complex128, thickness float64) (Layer, error) {
	return NewLayer(id, Scalar(er), Scalar(ur), thickness)
}
