package metrics

import (
	"math"

	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// StepSize tracks the accepted step sizes of an adaptive run from the time
// stamps it observes. Value reports the mean; Min and Max give the extremes.
type StepSize struct {
	last    float64
	started bool
	min     float64
	max     float64
	sum     float64
	count   int
}

func NewStepSize() *StepSize {
	return &StepSize{min: math.Inf(1)}
}

func (m *StepSize) Name() string { return "step_size" }

func (m *StepSize) Observe(t float64, s statespace.State, u stepper.Control) {
	if !m.started {
		m.started = true
		m.last = t
		return
	}
	dt := t - m.last
	m.last = t
	if dt <= 0 {
		return
	}
	m.min = math.Min(m.min, dt)
	m.max = math.Max(m.max, dt)
	m.sum += dt
	m.count++
}

func (m *StepSize) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func (m *StepSize) Min() float64 {
	if m.count == 0 {
		return 0
	}
	return m.min
}

func (m *StepSize) Max() float64 { return m.max }

func (m *StepSize) Reset() {
	*m = StepSize{min: math.Inf(1)}
}
