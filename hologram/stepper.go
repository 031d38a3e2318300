package hologram

import (
	"fmt"

	"github.com/cwbudde/algo-rcwa/rcwa"
	"github.com/cwbudde/algo-rcwa/rcwa/smatrix"
)

// Stepper evaluates a hologram one grating cycle at a time.
type Stepper struct {
	model    *Model
	acc      *Accumulated
	maxSteps int

	step   int
	length float64
	device *smatrix.Matrix
}

// NewStepper prepares a cycle-by-cycle evaluation of m up to thickness.
// maxSteps limits the number of Next calls after the first; 0 means no
// limit.
func NewStepper(m *Model, thickness float64, maxSteps int) (*Stepper, error) {
	count, err := m.CycleCount(thickness)
	if err != nil {
		return nil, err
	}
	if maxSteps > 0 && count > maxSteps {
		return nil, configError(fmt.Sprintf("%d cycles needed, limit is %d", count, maxSteps),
			"Increase max steps or reduce the thickness", ErrTooManySteps)
	}

	if !m.params.StepsPerCycle || m.params.Thickness != thickness {
		p := m.params
		p.StepsPerCycle = true
		p.Thickness = thickness
		if m, err = New(p); err != nil {
			return nil, err
		}
	}

	acc, err := m.Accumulate()
	if err != nil {
		return nil, err
	}
	return &Stepper{model: m, acc: acc, maxSteps: maxSteps, step: -1}, nil
}

// Model returns the cycle-mode model the stepper evaluates.
func (s *Stepper) Model() *Model { return s.model }

// Next adds one grating cycle and returns the new thickness and its
// efficiencies. The first call returns thickness 0. A failed call leaves
// the stepper where it was.
func (s *Stepper) Next() (float64, *rcwa.Efficiencies, error) {
	step := s.step + 1
	if s.maxSteps > 0 && step > s.maxSteps {
		return 0, nil, configError(fmt.Sprintf("step %d exceeds limit %d", step, s.maxSteps),
			"Increase max steps", ErrTooManySteps)
	}

	device := smatrix.Unity(s.model.sys.Dim())
	length := 0.0
	if s.device != nil {
		var err error
		if device, err = rcwa.Star(s.device, s.acc.Full); err != nil {
			return 0, nil, err
		}
		length = s.length + s.model.cycle
	}

	global, err := s.model.Global(s.acc, device)
	if err != nil {
		return 0, nil, err
	}
	eff, err := rcwa.Efficiency(s.model.sys, global)
	if err != nil {
		return 0, nil, err
	}
	s.step, s.device, s.length = step, device, length
	return length, eff, nil
}

// Steps returns the number of successful Next calls.
func (s *Stepper) Steps() int { return s.step + 1 }

// PerCycle returns the efficiencies at 0, 1, …, ⌈thickness/cycle⌉ grating
// cycles.
func (m *Model) PerCycle(thickness float64, maxSteps int) (*Series, error) {
	st, err := NewStepper(m, thickness, maxSteps)
	if err != nil {
		return nil, err
	}
	count, err := m.CycleCount(thickness)
	if err != nil {
		return nil, err
	}

	out := &Series{
		Lengths:      make([]float64, 0, count+1),
		Efficiencies: make([]*rcwa.Efficiencies, 0, count+1),
	}
	for i := 0; i <= count; i++ {
		l, eff, err := st.Next()
		if err != nil {
			return nil, err
		}
		out.Lengths = append(out.Lengths, l)
		out.Efficiencies = append(out.Efficiencies, eff)
	}
	return out, nil
}
