package models

import (
	"fmt"

	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// SpringMass is a linear mass-spring-damper on a Euclidean block. With unit
// mass and stiffness and no damping it is the textbook harmonic oscillator.
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64

	space *statespace.Space
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      1.0,
		Stiffness: 1.0,
		space: statespace.MustSpace(statespace.Subsystem{
			Name:        "mass",
			ConfigDim:   1,
			VelocityDim: 1,
			Kind:        statespace.Euclidean,
		}),
	}
}

func (m *SpringMass) Space() *statespace.Space { return m.space }

func (m *SpringMass) Derive(t float64, s statespace.State, u stepper.Control, acc [][]float64) error {
	force := 0.0
	if len(u) > 0 {
		force = u[0]
	}
	acc[0][0] = (-m.Stiffness*s.Q[0][0] - m.Damping*s.V[0][0] + force) / m.Mass
	return nil
}

// State builds an initial state from a position and velocity.
func (m *SpringMass) State(pos, vel float64) statespace.State {
	s := m.space.NewState()
	s.Q[0][0] = pos
	s.V[0][0] = vel
	return s
}

func (m *SpringMass) Energy(s statespace.State) float64 {
	ke := 0.5 * m.Mass * s.V[0][0] * s.V[0][0]
	pe := 0.5 * m.Stiffness * s.Q[0][0] * s.Q[0][0]
	return ke + pe
}

func (m *SpringMass) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      m.Mass,
		"stiffness": m.Stiffness,
		"damping":   m.Damping,
	}
}

func (m *SpringMass) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		m.Mass = value
	case "stiffness":
		m.Stiffness = value
	case "damping":
		m.Damping = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
