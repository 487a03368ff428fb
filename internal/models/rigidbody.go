package models

import (
	"fmt"
	"math"

	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// RigidBody is a free rigid body spinning under Euler's equations, with its
// attitude on a unit-quaternion block and body-frame angular velocity.
// Without control torque its rotational energy and the magnitude of its
// angular momentum are conserved, which makes it a good stress test for the
// manifold composition rules.
type RigidBody struct {
	// Principal moments of inertia.
	Ixx, Iyy, Izz float64

	space *statespace.Space
}

func NewRigidBody() *RigidBody {
	return &RigidBody{
		Ixx: 1.0,
		Iyy: 2.0,
		Izz: 3.0,
		space: statespace.MustSpace(statespace.Subsystem{
			Name:        "body",
			ConfigDim:   4,
			VelocityDim: 3,
			Kind:        statespace.UnitQuaternion,
		}),
	}
}

func (rb *RigidBody) Space() *statespace.Space { return rb.space }

// Derive implements Euler's equations: I*dw/dt + w x (I*w) = tau.
func (rb *RigidBody) Derive(t float64, s statespace.State, u stepper.Control, acc [][]float64) error {
	w := s.V[0]
	lx := rb.Ixx * w[0]
	ly := rb.Iyy * w[1]
	lz := rb.Izz * w[2]

	var tau [3]float64
	for i := 0; i < 3 && i < len(u); i++ {
		tau[i] = u[i]
	}

	acc[0][0] = (tau[0] - (w[1]*lz - w[2]*ly)) / rb.Ixx
	acc[0][1] = (tau[1] - (w[2]*lx - w[0]*lz)) / rb.Iyy
	acc[0][2] = (tau[2] - (w[0]*ly - w[1]*lx)) / rb.Izz
	return nil
}

// State builds an initial state from a body-frame angular velocity; the
// attitude starts at identity.
func (rb *RigidBody) State(wx, wy, wz float64) statespace.State {
	s := rb.space.NewState()
	s.V[0][0] = wx
	s.V[0][1] = wy
	s.V[0][2] = wz
	return s
}

// Energy returns the rotational kinetic energy.
func (rb *RigidBody) Energy(s statespace.State) float64 {
	w := s.V[0]
	return 0.5 * (rb.Ixx*w[0]*w[0] + rb.Iyy*w[1]*w[1] + rb.Izz*w[2]*w[2])
}

// MomentumNorm returns |I*w|, conserved for torque-free motion.
func (rb *RigidBody) MomentumNorm(s statespace.State) float64 {
	w := s.V[0]
	lx := rb.Ixx * w[0]
	ly := rb.Iyy * w[1]
	lz := rb.Izz * w[2]
	return math.Sqrt(lx*lx + ly*ly + lz*lz)
}

func (rb *RigidBody) GetParams() map[string]float64 {
	return map[string]float64{"ixx": rb.Ixx, "iyy": rb.Iyy, "izz": rb.Izz}
}

func (rb *RigidBody) SetParam(name string, value float64) error {
	switch name {
	case "ixx":
		rb.Ixx = value
	case "iyy":
		rb.Iyy = value
	case "izz":
		rb.Izz = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
