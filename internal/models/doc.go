// Package models provides example dynamical systems for the adaptive
// stepper.
//
// Each model implements [stepper.System] over its own state-space layout and
// exists to exercise the integrator, not to be a faithful physical library:
//
//   - [Pendulum]: damped torque-driven pendulum on a wrapped-angle block
//   - [SpringMass]: linear oscillator on a Euclidean block
//   - [RigidBody]: torque-free rigid body with quaternion attitude
//
// Models with a conserved energy expose an Energy method and so satisfy
// metrics.Hamiltonian, which the metrics package uses to track drift.
package models
