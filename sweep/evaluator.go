package sweep

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-rcwa/hologram"
	"github.com/cwbudde/algo-rcwa/rcwa"
)

// Hologram attributes a ParameterSource may set.
const (
	AttrThetaDeg        = "theta_deg"
	AttrPhiDeg          = "phi_deg"
	AttrWavelength      = "lam"
	AttrThetaRec1       = "theta_rec1"
	AttrPhiRec1         = "phi_rec1"
	AttrThetaRec2       = "theta_rec2"
	AttrPhiRec2         = "phi_rec2"
	AttrWavelengthRec   = "lam_hoe"
	AttrIndex           = "n"
	AttrIndexModulation = "dn"
	AttrThickness       = "thickness"
	AttrAddARLayer      = "add_ar_layer"
	AttrNZ              = "n_z"
	AttrNZStepsPerCycle = "nz_steps_per_cycle"
	AttrHarmonicOrder   = "harmonic_order"
)

// stepTolerance is the accepted mismatch between a cycle step length and
// its sweep value.
const stepTolerance = 1e-7

var (
	// ErrUnknownAttribute is returned for attributes without a setter.
	ErrUnknownAttribute = errors.New("sweep: hologram has no such attribute")
	// ErrStepMismatch is returned when the cycle stepper drifts from the
	// sweep values.
	ErrStepMismatch = errors.New("sweep: cycle step does not match sweep value")
	// ErrStepperFailed is returned for every cycle value after the first
	// failed one.
	ErrStepperFailed = errors.New("sweep: cycle stepper failed at an earlier value")
)

type setter func(p *hologram.Params, v float64)

// setters maps attribute names to typed hologram field setters.
var setters = map[string]setter{
	AttrThetaDeg:        func(p *hologram.Params, v float64) { p.ThetaDeg = v },
	AttrPhiDeg:          func(p *hologram.Params, v float64) { p.PhiDeg = v },
	AttrWavelength:      func(p *hologram.Params, v float64) { p.Wavelength = v },
	AttrThetaRec1:       func(p *hologram.Params, v float64) { p.ThetaRec1 = v },
	AttrPhiRec1:         func(p *hologram.Params, v float64) { p.PhiRec1 = v },
	AttrThetaRec2:       func(p *hologram.Params, v float64) { p.ThetaRec2 = v },
	AttrPhiRec2:         func(p *hologram.Params, v float64) { p.PhiRec2 = v },
	AttrWavelengthRec:   func(p *hologram.Params, v float64) { p.WavelengthRec = v },
	AttrIndex:           func(p *hologram.Params, v float64) { p.N = v },
	AttrIndexModulation: func(p *hologram.Params, v float64) { p.DN = v },
	AttrThickness:       func(p *hologram.Params, v float64) { p.Thickness = v },
	AttrAddARLayer:      func(p *hologram.Params, v float64) { p.AddARLayer = v != 0 },
	AttrNZ:              func(p *hologram.Params, v float64) { p.NZ = int(v) },
	AttrNZStepsPerCycle: func(p *hologram.Params, v float64) { p.StepsPerCycle = v != 0 },
	AttrHarmonicOrder:   func(p *hologram.Params, v float64) { p.HarmonicOrder = int(v) },
}

// Apply writes attribute values into p.
func Apply(p *hologram.Params, values map[string]float64) error {
	for name, v := range values {
		set, ok := setters[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
		}
		set(p, v)
	}
	return nil
}

// ParameterSource provides the sweep variable, its range and the scalar
// values of all other hologram attributes.
type ParameterSource interface {
	Variable() string
	Range(key string) (Range, error)
	Labels(key string) (Labels, error)
	// Attribute returns the hologram attribute written by key, or "".
	Attribute(key string) (string, error)
	// Values returns scalar values keyed by hologram attribute.
	Values() map[string]float64
}

// Evaluator computes the efficiencies of the values of one sweep.
type Evaluator interface {
	// Values returns the sweep values.
	Values() []float64
	// Orders returns the shape of the efficiency arrays.
	Orders() (rows, cols int)
	// Eval computes sweep value i. Values are evaluated in order.
	Eval(i int, v float64) (*rcwa.Efficiencies, error)
}

// EvaluatorFactory builds the Evaluator of a sweep.
type EvaluatorFactory func(src ParameterSource) (Evaluator, error)

// NewHologramEvaluator is the default EvaluatorFactory. Sweeping
// KeyCyclesThickness steps one grating cycle per value; any other variable
// recomputes the hologram with the variable's attribute set to each value.
func NewHologramEvaluator(src ParameterSource) (Evaluator, error) {
	base := hologram.DefaultParams()
	if err := Apply(&base, src.Values()); err != nil {
		return nil, err
	}

	key := src.Variable()
	r, err := src.Range(key)
	if err != nil {
		return nil, err
	}

	if key == KeyCyclesThickness {
		m, err := hologram.New(base)
		if err != nil {
			return nil, err
		}
		cycle, err := m.CycleLength()
		if err != nil {
			return nil, err
		}
		count, err := m.CycleCount(r.Start)
		if err != nil {
			return nil, err
		}
		st, err := hologram.NewStepper(m, r.Start, int(r.End))
		if err != nil {
			return nil, err
		}
		values := make([]float64, count+1)
		for i := range values {
			values[i] = float64(i) * cycle
		}
		return &cycleEvaluator{stepper: st, values: values, harmonic: base.HarmonicOrder}, nil
	}

	attr, err := src.Attribute(key)
	if err != nil {
		return nil, err
	}
	set, ok := setters[attr]
	if !ok {
		return nil, fmt.Errorf("%w: %q for parameter %q", ErrUnknownAttribute, attr, key)
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}
	return &valueEvaluator{base: base, set: set, values: r.Values()}, nil
}

type valueEvaluator struct {
	base   hologram.Params
	set    setter
	values []float64
}

func (e *valueEvaluator) Values() []float64 { return e.values }

func (e *valueEvaluator) Orders() (int, int) { return 1, 2*e.base.HarmonicOrder + 1 }

func (e *valueEvaluator) Eval(_ int, v float64) (*rcwa.Efficiencies, error) {
	p := e.base
	e.set(&p, v)
	m, err := hologram.New(p)
	if err != nil {
		return nil, err
	}
	return m.Calc()
}

// cycleEvaluator walks the stepper in lockstep with the sweep values. Once
// a step fails the stepper no longer matches the values, so every later
// Eval reports the first failure.
type cycleEvaluator struct {
	stepper  *hologram.Stepper
	values   []float64
	harmonic int

	failedAt int
	err      error
}

func (e *cycleEvaluator) Values() []float64 { return e.values }

func (e *cycleEvaluator) Orders() (int, int) { return 1, 2*e.harmonic + 1 }

func (e *cycleEvaluator) Eval(i int, v float64) (*rcwa.Efficiencies, error) {
	if e.err != nil {
		return nil, fmt.Errorf("%w (value %d): %w", ErrStepperFailed, e.failedAt, e.err)
	}
	l, eff, err := e.stepper.Next()
	if err == nil && math.Abs(l-v) > stepTolerance {
		err = fmt.Errorf("%w: length %v, value %v", ErrStepMismatch, l, v)
	}
	if err != nil {
		e.failedAt, e.err = i, err
		return nil, err
	}
	return eff, nil
}

// ParameterText describes the sweep variable, its range and every scalar
// attribute, one per line.
func ParameterText(src ParameterSource) (string, error) {
	key := src.Variable()
	r, err := src.Range(key)
	if err != nil {
		return "", err
	}
	l, err := src.Labels(key)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Variable parameter: %s\n", key)
	fmt.Fprintf(&b, "%s: %s, %s: %s, %s: %d\n", l.Start, formatFloat(r.Start), l.End, formatFloat(r.End), l.Steps, r.Steps)

	values := src.Values()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, formatFloat(values[name]))
	}
	return b.String(), nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
