package stepper

import (
	"errors"
	"fmt"
)

// Domain errors for step attempts.
var (
	// ErrDynamics indicates the dynamics callback reported a failed
	// evaluation. The underlying error is wrapped and never retried here.
	ErrDynamics = errors.New("stepper: dynamics evaluation failed")

	// ErrStepCollapse indicates repeated rejection exhausted the retry
	// budget for a single TryStep call.
	ErrStepCollapse = errors.New("stepper: step size collapsed")

	// ErrNotStarted indicates TryStep was called before Start.
	ErrNotStarted = errors.New("stepper: not started")

	// ErrTableau indicates inconsistent tableau coefficients.
	ErrTableau = errors.New("stepper: invalid tableau")
)

// StepError carries the context of a failed step attempt: the simulation
// time, the step size being attempted, and the last error metric observed.
type StepError struct {
	Time    float64
	Dt      float64
	Metric  float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%v (t=%.6g, dt=%.6g, metric=%.6g)", e.Wrapped, e.Time, e.Dt, e.Metric)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
