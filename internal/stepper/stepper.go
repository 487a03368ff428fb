package stepper

import (
	"fmt"
	"math"

	"github.com/kirella/bodysim/internal/statespace"
)

const eps = 2.220446049250313e-16

// DefaultMaxAttempts caps the reject-retry loop of a single TryStep call.
const DefaultMaxAttempts = 50

// Control is the external command vector forwarded to the dynamics callback.
type Control []float64

// System is the dynamics callback contract. Derive fills acc with one
// acceleration vector per subsystem block (velocity-shaped) for the given
// trial state. It must not retain s or acc past the call. A returned error
// aborts the step attempt and propagates unchanged; the stepper never
// retries a hard dynamics failure.
type System interface {
	Space() *statespace.Space
	Derive(t float64, s statespace.State, u Control, acc [][]float64) error
}

// Stats counts the work performed since Start.
type Stats struct {
	Accepted    uint64
	Rejected    uint64
	Evaluations uint64
}

// Result reports one accepted step.
type Result struct {
	Accepted bool
	UsedDt   float64
	Time     float64
	State    statespace.State
	Metric   float64
	Attempts int
}

// Stepper advances one coupled state timeline with an embedded Runge-Kutta
// pair and automatic step-size control. Not safe for concurrent use; run
// independent instances for parallel timelines.
type Stepper struct {
	sys    System
	tab    *Tableau
	tolAbs float64
	tolRel float64

	started     bool
	t           float64
	state       statespace.State
	dt          float64
	maxAttempts int
	stats       Stats

	// Per-attempt buffers, sized once at construction.
	ki        []statespace.Tangent
	incr      statespace.Tangent
	scale     statespace.Tangent
	errT      statespace.Tangent
	trial     statespace.State
	candidate statespace.State
	other     statespace.State
}

// New builds a stepper for the system's state space. At least one tolerance
// should be positive; with both at zero every attempt is rejected (see the
// package documentation).
func New(sys System, tab *Tableau, tolAbs, tolRel float64) (*Stepper, error) {
	if err := tab.validate(); err != nil {
		return nil, err
	}
	if tolAbs < 0 || tolRel < 0 {
		return nil, fmt.Errorf("%w: negative tolerance", statespace.ErrConfiguration)
	}
	sp := sys.Space()
	st := &Stepper{
		sys:         sys,
		tab:         tab,
		tolAbs:      tolAbs,
		tolRel:      tolRel,
		maxAttempts: DefaultMaxAttempts,
		ki:          make([]statespace.Tangent, tab.Stages()),
		incr:        sp.NewTangent(),
		scale:       sp.NewTangent(),
		errT:        sp.NewTangent(),
		trial:       sp.NewState(),
		candidate:   sp.NewState(),
		other:       sp.NewState(),
		state:       sp.NewState(),
	}
	for i := range st.ki {
		st.ki[i] = sp.NewTangent()
	}
	return st, nil
}

// SetMaxAttempts overrides the per-call retry budget.
func (st *Stepper) SetMaxAttempts(n int) {
	if n > 0 {
		st.maxAttempts = n
	}
}

// Start resets the stepper to time t0 and state x0. If dt0 is not positive,
// an initial step size is estimated from the derivative magnitude at x0.
func (st *Stepper) Start(t0 float64, x0 statespace.State, dt0 float64, u Control) error {
	x0.CopyTo(&st.state)
	st.t = t0
	st.stats = Stats{}
	st.started = true
	if dt0 > 0 {
		st.dt = dt0
		return nil
	}
	dt, err := st.initialStep(u)
	if err != nil {
		st.started = false
		return err
	}
	st.dt = dt
	return nil
}

// Time returns the current simulation time.
func (st *Stepper) Time() float64 { return st.t }

// StepSize returns the step size the next attempt will use.
func (st *Stepper) StepSize() float64 { return st.dt }

// State returns a view of the current state. It aliases internal storage and
// is overwritten by the next accepted step; clone to keep it.
func (st *Stepper) State() statespace.State { return st.state }

// Stats returns the counters accumulated since Start.
func (st *Stepper) Stats() Stats { return st.stats }

// TryStep advances the state by one accepted step. If targetDt is positive
// it overrides the adapted step size for the first attempt; the engine uses
// this to clip the final step of a run. Rejected attempts shrink the step
// and retry, up to the retry budget; exhausting it returns a [StepError]
// wrapping [ErrStepCollapse] with the last metric observed.
func (st *Stepper) TryStep(u Control, targetDt float64) (Result, error) {
	if !st.started {
		return Result{}, ErrNotStarted
	}
	dt := st.dt
	if targetDt > 0 {
		dt = targetDt
	}

	metric := math.NaN()
	for attempt := 1; attempt <= st.maxAttempts; attempt++ {
		if err := st.evalStages(u, dt); err != nil {
			st.dt = dt
			return Result{}, &StepError{Time: st.t, Dt: dt, Metric: metric, Wrapped: err}
		}
		metric = st.computeError(st.state, st.candidate, dt)

		used := dt
		var accepted bool
		dt, accepted = adjustStep(st.tab, metric, dt)
		if accepted {
			st.candidate.CopyTo(&st.state)
			st.t += used
			st.dt = dt
			st.stats.Accepted++
			return Result{
				Accepted: true,
				UsedDt:   used,
				Time:     st.t,
				State:    st.state,
				Metric:   metric,
				Attempts: attempt,
			}, nil
		}
		st.stats.Rejected++
	}

	st.dt = dt
	return Result{}, &StepError{Time: st.t, Dt: dt, Metric: metric, Wrapped: ErrStepCollapse}
}

// AdjustStep computes the error metric between a candidate solution and the
// state it started from, applies the step-control law to dt, and reports
// acceptance. It serves callers that drive the stage evaluation themselves;
// the stage derivatives from the most recent attempt are reused.
func (st *Stepper) AdjustStep(initial, candidate statespace.State, dt *float64) bool {
	metric := st.computeError(initial, candidate, *dt)
	next, accepted := adjustStep(st.tab, metric, *dt)
	*dt = next
	return accepted
}

// evalStages runs the explicit stage loop: for each stage the trial state is
// the base state displaced by the A-weighted sum of earlier stage
// derivatives, and the stage derivative pairs the trial velocity with the
// accelerations the dynamics reports there. The primary candidate uses the
// B weights. Stage derivatives stay in st.ki for the error estimate.
func (st *Stepper) evalStages(u Control, dt float64) error {
	for i := 0; i < st.tab.Stages(); i++ {
		if i == 0 {
			st.state.CopyTo(&st.trial)
		} else {
			st.incr.SetZero()
			for j, a := range st.tab.A[i] {
				if a != 0 {
					st.incr.Axpy(st.ki[j], a)
				}
			}
			st.state.Sum(st.incr, dt, &st.trial)
		}

		k := st.ki[i]
		for b := range k.DQ {
			copy(k.DQ[b], st.trial.V[b])
		}
		if err := st.sys.Derive(st.t+st.tab.C[i]*dt, st.trial, u, k.DV); err != nil {
			return fmt.Errorf("%w: %w", ErrDynamics, err)
		}
		st.stats.Evaluations++
	}

	st.incr.SetZero()
	for i, b := range st.tab.B {
		if b != 0 {
			st.incr.Axpy(st.ki[i], b)
		}
	}
	st.state.Sum(st.incr, dt, &st.candidate)
	return nil
}

// computeError measures the disagreement between the primary candidate and
// the embedded lower-order solution, normalized against the tolerances.
// The absolute norm divides the raw error tangent by tolAbs; the relative
// norm divides it element-wise by the step increment first. A tolerance at
// or below machine epsilon leaves its norm undefined (+Inf). The smaller of
// the two is reported, ignoring NaN operands so a zero-increment step with a
// defined absolute norm is not poisoned by the 0/0 relative norm.
func (st *Stepper) computeError(initial, candidate statespace.State, dt float64) float64 {
	st.incr.SetZero()
	for i, e := range st.tab.E {
		if e != 0 {
			st.incr.Axpy(st.ki[i], e)
		}
	}
	initial.Sum(st.incr, dt, &st.other)
	candidate.Difference(st.other, &st.errT)

	errAbs := math.Inf(1)
	errRel := math.Inf(1)
	if st.tolAbs > eps {
		errAbs = st.errT.NormInf() / st.tolAbs
	}
	if st.tolRel > eps {
		candidate.Difference(initial, &st.scale)
		st.errT.Div(st.scale)
		errRel = st.errT.NormInf() / st.tolRel
	}
	if errRel < errAbs {
		return errRel
	}
	return errAbs
}

// initialStep estimates a first step size from the derivative magnitude at
// the start state, a simplified form of Hairer's starting-step rule.
func (st *Stepper) initialStep(u Control) (float64, error) {
	k := st.ki[0]
	for b := range k.DQ {
		copy(k.DQ[b], st.state.V[b])
	}
	if err := st.sys.Derive(st.t, st.state, u, k.DV); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDynamics, err)
	}
	st.stats.Evaluations++

	dnf := k.NormInf()
	if math.IsNaN(dnf) || dnf < 1e-10 {
		return 1e-3, nil
	}
	return math.Min(1e-2/dnf, 1.0), nil
}
