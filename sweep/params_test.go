package sweep

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-rcwa/hologram"
	"github.com/cwbudde/algo-rcwa/internal/testutil"
)

func TestParameterTableDefaults(t *testing.T) {
	tab := NewParameterTable()
	if tab.Variable() != KeyCyclesThickness {
		t.Fatalf("variable = %q, want %q", tab.Variable(), KeyCyclesThickness)
	}
	if n := len(tab.Keys()); n != 16 {
		t.Fatalf("got %d keys, want 16", n)
	}

	wantVariables := []string{
		KeyCyclesThickness, KeyTheta, KeyPhi, KeyWavelength, KeyThetaRec1, KeyPhiRec1,
		KeyThetaRec2, KeyPhiRec2, KeyWavelengthRec, KeyIndex, KeyIndexModulation, KeyThickness,
	}
	if got := tab.Variables(); !slices.Equal(got, wantVariables) {
		t.Fatalf("variables = %v, want %v", got, wantVariables)
	}

	for _, tc := range []struct {
		key  string
		want Range
	}{
		{KeyCyclesThickness, Range{Start: 100, End: 1000, Steps: 0}},
		{KeyTheta, Range{Start: 0, End: 10, Steps: 5}},
		{KeyIndex, Range{Start: 1.5, End: 2.5, Steps: 2}},
	} {
		r, err := tab.Range(tc.key)
		if err != nil {
			t.Fatalf("Range(%q): %v", tc.key, err)
		}
		if r != tc.want {
			t.Fatalf("Range(%q) = %+v, want %+v", tc.key, r, tc.want)
		}
	}

	l, err := tab.Labels(KeyCyclesThickness)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if want := (Labels{Start: "Thickness", End: "Max Steps", Steps: "---"}); l != want {
		t.Fatalf("labels = %+v, want %+v", l, want)
	}

	v := tab.Values()
	if len(v) != 15 {
		t.Fatalf("got %d values, want 15", len(v))
	}
	for attr, want := range map[string]float64{
		AttrIndex:         1.5,
		AttrThetaRec1:     45,
		AttrAddARLayer:    1,
		AttrNZ:            21,
		AttrHarmonicOrder: 2,
	} {
		if v[attr] != want {
			t.Fatalf("%s = %v, want %v", attr, v[attr], want)
		}
	}
}

func TestSetRangeNormalizes(t *testing.T) {
	tests := []struct {
		name string
		key  string
		in   Range
		want Range
	}{
		{"swap", KeyIndexModulation, Range{Start: 0.5, End: 0.1, Steps: 4}, Range{Start: 0.1, End: 0.5, Steps: 4}},
		{"widen", KeyPhi, Range{Start: 3, End: 3, Steps: 5}, Range{Start: 3, End: 4, Steps: 5}},
		{"widen at max", KeyTheta, Range{Start: 89, End: 89, Steps: 5}, Range{Start: 88, End: 89, Steps: 5}},
		{"clamp", KeyTheta, Range{Start: -100, End: 100, Steps: 3}, Range{Start: -89, End: 89, Steps: 3}},
		{"min steps", KeyThickness, Range{Start: 0, End: 10, Steps: 1}, Range{Start: 0, End: 10, Steps: 2}},
		{"cycles", KeyCyclesThickness, Range{Start: 0.5, End: 1.5, Steps: 7}, Range{Start: 1, End: 2, Steps: 7}},
		{"int truncation", KeyNZ, Range{Start: 3.7, End: 9.2, Steps: 3}, Range{Start: 3, End: 9, Steps: 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tab := NewParameterTable()
			if err := tab.SetRange(tc.key, tc.in); err != nil {
				t.Fatalf("SetRange: %v", err)
			}
			got, err := tab.Range(tc.key)
			if err != nil {
				t.Fatalf("Range: %v", err)
			}
			if got != tc.want {
				t.Fatalf("range = %+v, want %+v", got, tc.want)
			}
		})
	}

	tab := NewParameterTable()
	if err := tab.SetRange(KeyAddARLayer, Range{Start: 0, End: 1, Steps: 2}); !errors.Is(err, ErrNotSweepable) {
		t.Fatalf("flag range: err = %v, want ErrNotSweepable", err)
	}
	if err := tab.SetRange("nope", Range{}); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("unknown key: err = %v, want ErrUnknownParameter", err)
	}
	if err := tab.SetRange(KeyTheta, Range{Start: math.NaN(), End: 1, Steps: 2}); err == nil {
		t.Fatal("NaN range accepted")
	}
}

func TestSetValue(t *testing.T) {
	tab := NewParameterTable()

	for _, tc := range []struct {
		key     string
		in, out float64
	}{
		{KeyTheta, 100, 89},
		{KeyNZ, 3.7, 3},
		{KeyIndex, 0.5, 1},
	} {
		if err := tab.SetValue(tc.key, tc.in); err != nil {
			t.Fatalf("SetValue(%q, %v): %v", tc.key, tc.in, err)
		}
		p, err := tab.Get(tc.key)
		if err != nil {
			t.Fatalf("Get(%q): %v", tc.key, err)
		}
		if p.Value != tc.out {
			t.Fatalf("%s = %v, want %v", tc.key, p.Value, tc.out)
		}
	}

	if err := tab.SetValue(KeyAddARLayer, 0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if v := tab.Values()[AttrAddARLayer]; v != 0 {
		t.Fatalf("add_ar_layer = %v, want 0", v)
	}

	if err := tab.SetValue("nope", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("unknown key: err = %v, want ErrUnknownParameter", err)
	}
	if err := tab.SetValue(KeyPhi, math.NaN()); err == nil {
		t.Fatal("NaN value accepted")
	}
}

func TestSetText(t *testing.T) {
	tab := NewParameterTable()

	for _, tc := range []struct {
		text string
		want float64
	}{
		{"no", 0}, {"maybe", 0}, {"YES", 1}, {"N", 0}, {"true", 1}, {"1", 1}, {"0", 0},
	} {
		if err := tab.SetText(KeyNZStepsPerCycle, tc.text); err != nil {
			t.Fatalf("SetText(%q): %v", tc.text, err)
		}
		if got := tab.Values()[AttrNZStepsPerCycle]; got != tc.want {
			t.Fatalf("text %q = %v, want %v", tc.text, got, tc.want)
		}
	}

	if err := tab.SetText(KeyWavelength, "0.633"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if got := tab.Values()[AttrWavelength]; got != 0.633 {
		t.Fatalf("wavelength = %v, want 0.633", got)
	}
	if err := tab.SetText(KeyWavelength, "red"); err == nil {
		t.Fatal("non-numeric wavelength accepted")
	}
}

func TestSetVariable(t *testing.T) {
	tab := NewParameterTable()
	if err := tab.SetVariable(KeyThickness); err != nil {
		t.Fatalf("SetVariable: %v", err)
	}

	for key, want := range map[string]error{
		KeyAddARLayer:    ErrNotSweepable,
		KeyHarmonicOrder: ErrNotSweepable,
		"nope":           ErrUnknownParameter,
	} {
		if err := tab.SetVariable(key); !errors.Is(err, want) {
			t.Fatalf("SetVariable(%q): err = %v, want %v", key, err, want)
		}
	}
	if tab.Variable() != KeyThickness {
		t.Fatalf("variable = %q after rejected changes, want %q", tab.Variable(), KeyThickness)
	}

	rows := tab.Rows()
	for _, p := range rows {
		if p.Key == KeyThickness || p.Key == KeyCyclesThickness {
			t.Fatalf("row %q listed while thickness is swept", p.Key)
		}
	}
	if len(rows) != 14 {
		t.Fatalf("got %d rows, want 14", len(rows))
	}
}

func TestRangeValues(t *testing.T) {
	testutil.RequireClose(t, "5 steps", Range{Start: 0, End: 10, Steps: 5}.Values(), []float64{0, 2.5, 5, 7.5, 10}, 0)
	testutil.RequireClose(t, "1 step", Range{Start: 3, End: 10, Steps: 1}.Values(), []float64{3}, 0)
	if v := (Range{Start: 3, End: 10}).Values(); v != nil {
		t.Fatalf("0 steps = %v, want nil", v)
	}
}

func TestParameterText(t *testing.T) {
	tab := NewParameterTable()
	if err := tab.SetVariable(KeyTheta); err != nil {
		t.Fatalf("SetVariable: %v", err)
	}

	text, err := ParameterText(tab)
	if err != nil {
		t.Fatalf("ParameterText: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) != 2+15 {
		t.Fatalf("got %d lines, want 17:\n%s", len(lines), text)
	}
	if lines[0] != "Variable parameter: theta" || lines[1] != "Start: 0, End: 10, Steps: 5" {
		t.Fatalf("header = %q, %q", lines[0], lines[1])
	}
	for _, want := range []string{"n: 1.5", "theta_rec1: 45"} {
		if !slices.Contains(lines, want) {
			t.Fatalf("missing line %q in:\n%s", want, text)
		}
	}
}

func TestApplyRejectsUnknownAttribute(t *testing.T) {
	p := hologram.DefaultParams()
	if err := Apply(&p, map[string]float64{AttrNZ: 7, AttrAddARLayer: 0}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.NZ != 7 || p.AddARLayer {
		t.Fatalf("NZ = %d, AddARLayer = %v, want 7, false", p.NZ, p.AddARLayer)
	}
	if err := Apply(&p, map[string]float64{"colour": 1}); !errors.Is(err, ErrUnknownAttribute) {
		t.Fatalf("err = %v, want ErrUnknownAttribute", err)
	}
}
