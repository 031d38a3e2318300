// Package batch evaluates volume holograms row by row from a plain text
// table.
//
// Each input row holds one parameter set in the column order given by
// Columns. Each output row holds the Rs, Rp, Ts and Tp efficiencies of all
// diffraction orders, so a harmonic order h yields (2h+1)·4 values.
package batch
