// Package rcwa implements rigorous coupled-wave analysis for periodic
// layered media.
//
// A [Parameter] describes the incident plane wave, the harmonic truncation,
// the lattice and the semi-infinite reflection and transmission media. A
// [System] built from it precomputes the harmonic wavevectors and the
// vacuum gap basis. Each [Layer] is turned into a scattering matrix by
// solving its eigenmode problem; layers are cascaded with the Redheffer star
// product from package smatrix, closed by the reflection and transmission
// matrices, and [Efficiency] extracts the diffraction efficiencies of every
// order for s- and p-polarized illumination.
//
// Errors carry a [Kind]: configuration faults (degenerate propagation,
// invalid grids) are terminal for the current parameters, numerical
// singularities may disappear with a different truncation. Use
// errors.Is(err, ErrConfig) or errors.Is(err, ErrSingular) to classify, and
// [Hint] to obtain the remediation text.
package rcwa
