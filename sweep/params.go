package sweep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Parameter keys of the hologram parameter table.
const (
	KeyCyclesThickness = "cycles_thickness"
	KeyTheta           = "theta"
	KeyPhi             = "phi"
	KeyWavelength      = "lam"
	KeyThetaRec1       = "theta_rec1"
	KeyPhiRec1         = "phi_rec1"
	KeyThetaRec2       = "theta_rec2"
	KeyPhiRec2         = "phi_rec2"
	KeyWavelengthRec   = "lam_hoe"
	KeyIndex           = "n0"
	KeyIndexModulation = "dn"
	KeyThickness       = "thickness"
	KeyAddARLayer      = "add_ar_layer"
	KeyNZ              = "n_z"
	KeyNZStepsPerCycle = "nz_steps_per_cycle"
	KeyHarmonicOrder   = "harmonic_order"
)

const (
	defaultVariableKey  = KeyCyclesThickness
	defaultRangeSteps   = 2
	defaultCycleMaxStep = 1000
	minCycleThickness   = 1
	minCycleStepLimit   = 2
)

var (
	// ErrUnknownParameter is returned for keys not in the table.
	ErrUnknownParameter = errors.New("sweep: unknown parameter")
	// ErrNotSweepable is returned when a parameter cannot be the sweep
	// variable.
	ErrNotSweepable = errors.New("sweep: parameter cannot be swept")
)

// ParamKind is the value type of a parameter.
type ParamKind int

const (
	KindFloat ParamKind = iota
	KindInt
	KindBool
	// KindCycles is the pseudo-parameter that sweeps the thickness in whole
	// grating cycles. Its range is (thickness, max steps).
	KindCycles
)

func (k ParamKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindCycles:
		return "cycles"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(k))
	}
}

// Range is the sweep range of a parameter. For KindCycles, Start is the
// thickness and End the maximum number of cycle steps.
type Range struct {
	Start, End float64
	Steps      int
}

// Values returns Steps evenly spaced values from Start to End inclusive.
func (r Range) Values() []float64 {
	switch {
	case r.Steps <= 0:
		return nil
	case r.Steps == 1:
		return []float64{r.Start}
	}
	return floats.Span(make([]float64, r.Steps), r.Start, r.End)
}

// Labels names the three range fields of a parameter.
type Labels struct {
	Start, End, Steps string
}

// Param is one entry of a ParameterTable.
type Param struct {
	Key  string
	Kind ParamKind
	// Value holds the scalar value; bools are 0 or 1.
	Value    float64
	Min, Max float64
	Range    Range
	Labels   Labels
	// Attribute names the hologram attribute the value is written to.
	Attribute string
	// Sweepable reports whether the parameter may be the sweep variable.
	Sweepable bool
	// InTable reports whether the value is edited in the value table.
	InTable bool
}

// filter clamps the value and normalizes the range.
func (p *Param) filter() {
	p.Value = math.Min(math.Max(p.Value, p.Min), p.Max)
	if p.Kind == KindInt {
		p.Value = math.Trunc(p.Value)
	}

	r := &p.Range
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	if r.Start == r.End {
		if r.End == p.Max {
			r.Start, r.End = r.End-1, r.Start
		} else {
			r.End++
		}
	}
	r.Start = math.Max(r.Start, p.Min)
	r.End = math.Min(r.End, p.Max)
	if r.Steps < 2 {
		r.Steps = 2
	}
}

// ParameterTable is the editable hologram parameter set. It is safe for
// concurrent use and implements ParameterSource.
type ParameterTable struct {
	mu       sync.RWMutex
	params   map[string]*Param
	order    []string
	variable string
}

func newParam(key string, kind ParamKind, value float64, attribute string) *Param {
	return &Param{
		Key:       key,
		Kind:      kind,
		Value:     value,
		Min:       math.Inf(-1),
		Max:       math.Inf(1),
		Range:     Range{Start: value, End: value + 1, Steps: defaultRangeSteps},
		Labels:    Labels{Start: "Start", End: "End", Steps: "Steps"},
		Attribute: attribute,
		Sweepable: kind == KindFloat || kind == KindInt || kind == KindCycles,
		InTable:   kind != KindCycles,
	}
}

// NewParameterTable returns the hologram parameters with their defaults.
// The sweep variable is KeyCyclesThickness.
func NewParameterTable() *ParameterTable {
	t := &ParameterTable{params: make(map[string]*Param), variable: defaultVariableKey}
	add := func(p *Param) *Param {
		t.params[p.Key] = p
		t.order = append(t.order, p.Key)
		return p
	}

	cycles := add(newParam(KeyCyclesThickness, KindCycles, 1, ""))
	cycles.Range = Range{Start: 100, End: defaultCycleMaxStep, Steps: 0}
	cycles.Labels = Labels{Start: "Thickness", End: "Max Steps", Steps: "---"}

	theta := add(newParam(KeyTheta, KindFloat, 0, AttrThetaDeg))
	theta.Min, theta.Max = -89, 89
	theta.Range = Range{Start: 0, End: 10, Steps: 5}

	phi := add(newParam(KeyPhi, KindFloat, 0, AttrPhiDeg))
	phi.Min, phi.Max = -360, 360

	lam := add(newParam(KeyWavelength, KindFloat, 0.5, AttrWavelength))
	lam.Min = 1e-9

	add(newParam(KeyThetaRec1, KindFloat, 45, AttrThetaRec1))
	phiRec1 := add(newParam(KeyPhiRec1, KindFloat, 0, AttrPhiRec1))
	phiRec1.Min, phiRec1.Max = 0, 360

	add(newParam(KeyThetaRec2, KindFloat, 0, AttrThetaRec2))
	phiRec2 := add(newParam(KeyPhiRec2, KindFloat, 0, AttrPhiRec2))
	phiRec2.Min, phiRec2.Max = 0, 360

	lamHoe := add(newParam(KeyWavelengthRec, KindFloat, 0.5, AttrWavelengthRec))
	lamHoe.Min = 1e-9

	n := add(newParam(KeyIndex, KindFloat, 1.5, AttrIndex))
	n.Min = 1

	dn := add(newParam(KeyIndexModulation, KindFloat, 0.01, AttrIndexModulation))
	dn.Min = 0

	thickness := add(newParam(KeyThickness, KindFloat, 100, AttrThickness))
	thickness.Min = 0
	thickness.Range = Range{Start: 0, End: 100, Steps: 20}

	add(newParam(KeyAddARLayer, KindBool, 1, AttrAddARLayer))

	nz := add(newParam(KeyNZ, KindInt, 21, AttrNZ))
	nz.Min, nz.Sweepable = 0, false

	add(newParam(KeyNZStepsPerCycle, KindBool, 1, AttrNZStepsPerCycle))

	harmonic := add(newParam(KeyHarmonicOrder, KindInt, 2, AttrHarmonicOrder))
	harmonic.Min, harmonic.Sweepable = 0, false

	return t
}

func (t *ParameterTable) lookup(key string) (*Param, error) {
	p, ok := t.params[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	return p, nil
}

// Keys returns all parameter keys in table order.
func (t *ParameterTable) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// Get returns a copy of the parameter stored under key.
func (t *ParameterTable) Get(key string) (Param, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, err := t.lookup(key)
	if err != nil {
		return Param{}, err
	}
	return *p, nil
}

// Variable returns the key of the sweep variable.
func (t *ParameterTable) Variable() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.variable
}

// SetVariable selects the sweep variable.
func (t *ParameterTable) SetVariable(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.lookup(key)
	if err != nil {
		return err
	}
	if !p.Sweepable {
		return fmt.Errorf("%w: %q", ErrNotSweepable, key)
	}
	t.variable = key
	return nil
}

// Variables returns the keys that may be swept, in table order.
func (t *ParameterTable) Variables() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	for _, k := range t.order {
		if t.params[k].Sweepable {
			out = append(out, k)
		}
	}
	return out
}

// Range returns the sweep range of key.
func (t *ParameterTable) Range(key string) (Range, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, err := t.lookup(key)
	if err != nil {
		return Range{}, err
	}
	return p.Range, nil
}

// SetRange sets the sweep range of key. The range is normalized: ends are
// swapped when reversed, widened when equal and clamped to the bounds, and
// at least two steps are used. For KindCycles the thickness is at least 1
// and the step limit at least 2.
func (t *ParameterTable) SetRange(key string, r Range) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.lookup(key)
	if err != nil {
		return err
	}
	if math.IsNaN(r.Start) || math.IsNaN(r.End) {
		return fmt.Errorf("sweep: range of %q contains NaN", key)
	}

	switch p.Kind {
	case KindBool:
		return fmt.Errorf("%w: %q", ErrNotSweepable, key)
	case KindCycles:
		p.Range = Range{
			Start: math.Max(r.Start, minCycleThickness),
			End:   math.Trunc(math.Max(r.End, minCycleStepLimit)),
			Steps: r.Steps,
		}
		return nil
	case KindInt:
		r.Start, r.End = math.Trunc(r.Start), math.Trunc(r.End)
	}
	p.Range = r
	p.filter()
	return nil
}

// SetValue sets the scalar value of key, clamped to its bounds. Integer
// parameters are truncated; bool parameters are true for any non-zero v.
func (t *ParameterTable) SetValue(key string, v float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.lookup(key)
	if err != nil {
		return err
	}
	if math.IsNaN(v) {
		return fmt.Errorf("sweep: value of %q is NaN", key)
	}

	switch p.Kind {
	case KindBool:
		p.Value = boolValue(v != 0)
	case KindCycles:
		// The cycle variable has no scalar value.
	default:
		p.Value = v
		p.filter()
	}
	return nil
}

// SetText parses text for key and sets the value. Bool parameters accept
// yes/no style words and 0/1; unrecognized words leave the value unchanged.
func (t *ParameterTable) SetText(key, text string) error {
	p, err := t.Get(key)
	if err != nil {
		return err
	}
	if p.Kind == KindBool {
		b, ok := parseBool(text)
		if !ok {
			return nil
		}
		return t.SetValue(key, boolValue(b))
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("sweep: value of %q: %w", key, err)
	}
	return t.SetValue(key, v)
}

// Labels returns the range labels of key.
func (t *ParameterTable) Labels(key string) (Labels, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, err := t.lookup(key)
	if err != nil {
		return Labels{}, err
	}
	return p.Labels, nil
}

// Attribute returns the hologram attribute written by key, or "".
func (t *ParameterTable) Attribute(key string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, err := t.lookup(key)
	if err != nil {
		return "", err
	}
	return p.Attribute, nil
}

// Values returns the scalar value of every parameter that has a hologram
// attribute, keyed by attribute.
func (t *ParameterTable) Values() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.params))
	for _, p := range t.params {
		if p.Attribute != "" {
			out[p.Attribute] = p.Value
		}
	}
	return out
}

// Rows returns the parameters shown in the value table, excluding the
// current sweep variable.
func (t *ParameterTable) Rows() []Param {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Param
	for _, k := range t.order {
		if p := t.params[k]; p.InTable && k != t.variable {
			out = append(out, *p)
		}
	}
	return out
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func parseBool(s string) (value, ok bool) {
	switch s {
	case "Yes", "yes", "Y", "YES", "True", "TRUE", "true", "1":
		return true, true
	case "No", "no", "NO", "N", "False", "FALSE", "false", "0":
		return false, true
	}
	return false, false
}
