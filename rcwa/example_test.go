package rcwa_test

import (
	"fmt"

	"github.com/cwbudde/algo-rcwa/rcwa"
	"github.com/cwbudde/algo-rcwa/rcwa/smatrix"
)

func ExampleEfficiency() {
	// Air to glass at normal incidence.
	p := rcwa.Parameter{
		Wavelength: 0.5,
		ErRef:      1,
		UrRef:      1,
		ErTrn:      2.25,
		UrTrn:      1,
	}

	sys, err := rcwa.NewSystem(p)
	if err != nil {
		panic(err)
	}
	ref, err := sys.ReflectionMatrix()
	if err != nil {
		panic(err)
	}
	trn, err := sys.TransmissionMatrix()
	if err != nil {
		panic(err)
	}
	global, err := rcwa.GlobalMatrix(ref, smatrix.Unity(sys.Dim()), trn)
	if err != nil {
		panic(err)
	}
	eff, err := rcwa.Efficiency(sys, global)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Rs=%.2f%% Ts=%.2f%%\n", eff.Rs[0][0], eff.Ts[0][0])
	// Output:
	// Rs=4.00% Ts=96.00%
}
