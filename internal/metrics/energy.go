package metrics

import (
	"math"

	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// Hamiltonian matches models with a conserved total energy.
type Hamiltonian interface {
	Energy(s statespace.State) float64
}

// EnergyDrift tracks the worst relative deviation from the initial energy.
type EnergyDrift struct {
	ham      Hamiltonian
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(ham Hamiltonian) *EnergyDrift {
	return &EnergyDrift{ham: ham}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(t float64, s statespace.State, u stepper.Control) {
	energy := e.ham.Energy(s)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
