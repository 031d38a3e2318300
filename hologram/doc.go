// Package hologram models a volume holographic optical element recorded by
// two plane waves and evaluates it with the RCWA engine.
//
// The recorded index profile n + Δn·cos(g·r) is sliced into NZ layers along
// z, either over one grating cycle (so that thick elements are built by
// repeated doubling of the one-cycle scattering matrix) or over the whole
// thickness. An optional quarter-wave anti-reflection layer is added on
// both faces.
//
// Model.Calc evaluates one configuration. Model.PerStep and Stepper give
// the efficiency as a function of thickness, per slice or per full cycle.
package hologram
