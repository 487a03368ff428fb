package metrics

import (
	"math"
	"testing"

	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

type quadraticEnergy struct{}

func (quadraticEnergy) Energy(s statespace.State) float64 {
	return 0.5 * (s.Q[0][0]*s.Q[0][0] + s.V[0][0]*s.V[0][0])
}

func oneDofState(q, v float64) statespace.State {
	sp := statespace.MustSpace(statespace.Subsystem{
		Name: "m", ConfigDim: 1, VelocityDim: 1, Kind: statespace.Euclidean,
	})
	s := sp.NewState()
	s.Q[0][0] = q
	s.V[0][0] = v
	return s
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(quadraticEnergy{})

	m.Observe(0, oneDofState(1, 0), stepper.Control{})
	if m.Value() != 0 {
		t.Errorf("expected zero drift at first sample, got %v", m.Value())
	}

	m.Observe(1, oneDofState(1.1, 0), stepper.Control{})
	expected := math.Abs(0.5*1.1*1.1-0.5) / 0.5
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected drift %v, got %v", expected, m.Value())
	}

	// Drift is a running maximum; returning to the start must not lower it.
	m.Observe(2, oneDofState(1, 0), stepper.Control{})
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("drift maximum not retained: %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestStepSize(t *testing.T) {
	m := NewStepSize()
	s := oneDofState(0, 0)

	for _, tm := range []float64{0, 0.1, 0.3, 0.35} {
		m.Observe(tm, s, nil)
	}

	if math.Abs(m.Min()-0.05) > 1e-12 {
		t.Errorf("expected min 0.05, got %v", m.Min())
	}
	if math.Abs(m.Max()-0.2) > 1e-12 {
		t.Errorf("expected max 0.2, got %v", m.Max())
	}
	if math.Abs(m.Value()-0.35/3) > 1e-12 {
		t.Errorf("expected mean %v, got %v", 0.35/3, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero mean after reset")
	}
}
