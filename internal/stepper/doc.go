// Package stepper implements adaptive-step explicit Runge-Kutta integration
// over composite [statespace] states.
//
// A [Stepper] is built from a [System] (the dynamics callback), a [Tableau]
// describing an embedded Runge-Kutta pair, and absolute/relative tolerances.
// [Stepper.TryStep] performs trial steps, estimating the local error from the
// embedded lower-order solution and shrinking the step until the error meets
// the tolerances; the adapted step size carries over to the next call.
//
// The stepper advances one timeline and is not safe for concurrent use.
// All per-attempt buffers are sized once at construction, so the cost of a
// step is the dynamics evaluations alone. The stepper never clips a step to
// hit an exact target time; alignment is the caller's concern (see the
// engine package).
//
// # Degenerate tolerances
//
// If both tolerances are zero every step is rejected; if exactly one is zero
// the other governs alone. Supplying at least one positive tolerance is the
// caller's responsibility.
package stepper
