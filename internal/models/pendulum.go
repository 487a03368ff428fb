package models

import (
	"fmt"
	"math"

	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// Configurable is implemented by models with runtime-adjustable parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Pendulum is a damped pendulum with an optional control torque. Its single
// configuration component is a wrapped angle.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64

	space *statespace.Space
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
		space: statespace.MustSpace(statespace.Subsystem{
			Name:        "pendulum",
			ConfigDim:   1,
			VelocityDim: 1,
			Kind:        statespace.Angle,
		}),
	}
}

func (p *Pendulum) Space() *statespace.Space { return p.space }

func (p *Pendulum) Derive(t float64, s statespace.State, u stepper.Control, acc [][]float64) error {
	theta := s.Q[0][0]
	omega := s.V[0][0]

	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}
	acc[0][0] = (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + torque) /
		(p.Mass * p.Length * p.Length)
	return nil
}

// State builds an initial state from an angle and angular velocity.
func (p *Pendulum) State(theta, omega float64) statespace.State {
	s := p.space.NewState()
	s.Q[0][0] = theta
	s.V[0][0] = omega
	return s
}

func (p *Pendulum) Energy(s statespace.State) float64 {
	v := p.Length * s.V[0][0]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(s.Q[0][0]))
	return ke + pe
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":    p.Mass,
		"length":  p.Length,
		"damping": p.Damping,
		"gravity": p.Gravity,
	}
}

func (p *Pendulum) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		p.Mass = value
	case "length":
		p.Length = value
	case "damping":
		p.Damping = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
