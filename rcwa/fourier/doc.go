// Package fourier computes centered 2-D Fourier spectra of permittivity and
// permeability grids and builds the block-Toeplitz convolution matrices that
// couple spatial harmonics in RCWA.
//
// Spectra are normalized by the number of grid cells so that the zero-order
// coefficient equals the cell average. Offsets are addressed relative to the
// zero order, which is equivalent to indexing an fftshift-ed spectrum.
package fourier
