// Package engine runs an adaptive stepper to a target duration.
//
// The stepper itself never clips a step to land on an exact time; the engine
// owns that alignment, shortening only the final step of a run. It also
// feeds metrics and observers and collects the trajectory.
package engine

import (
	"context"
	"fmt"

	"github.com/kirella/bodysim/internal/metrics"
	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// timeEps bounds how close to the target time the run loop keeps stepping.
const timeEps = 1e-12

// Controller supplies the external command for each step.
type Controller interface {
	Compute(t float64, s statespace.State) stepper.Control
}

// Observer is notified after every accepted step.
type Observer interface {
	OnStep(t float64, s statespace.State, u stepper.Control)
}

// Config holds per-run settings.
type Config struct {
	// Duration is the simulated time to cover.
	Duration float64
	// InitialDt seeds the step size; non-positive lets the stepper
	// estimate one.
	InitialDt float64
}

// Result collects an integration run.
type Result struct {
	Times   []float64
	States  []statespace.State
	Dts     []float64
	Metrics map[string]float64
	Stats   stepper.Stats
}

// Engine drives one stepper through full runs.
type Engine struct {
	st        *stepper.Stepper
	ctrl      Controller
	metrics   []metrics.Metric
	observers []Observer
}

func New(st *stepper.Stepper, ctrl Controller) *Engine {
	return &Engine{st: st, ctrl: ctrl}
}

func (e *Engine) AddMetric(m metrics.Metric) { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer)     { e.observers = append(e.observers, o) }

// Run integrates from x0 at t=0 until cfg.Duration. On a step failure the
// partial result gathered so far is returned together with the error.
func (e *Engine) Run(ctx context.Context, x0 statespace.State, cfg Config) (*Result, error) {
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("engine: duration must be positive, got %v", cfg.Duration)
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	u := e.compute(0, x0)
	if err := e.st.Start(0, x0, cfg.InitialDt, u); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}
	e.record(result, 0, x0, u)

	for cfg.Duration-e.st.Time() > timeEps*cfg.Duration {
		select {
		case <-ctx.Done():
			e.finish(result)
			return result, ctx.Err()
		default:
		}

		u = e.compute(e.st.Time(), e.st.State())

		target := 0.0
		if remaining := cfg.Duration - e.st.Time(); remaining < e.st.StepSize() {
			target = remaining
		}

		res, err := e.st.TryStep(u, target)
		if err != nil {
			e.finish(result)
			return result, err
		}

		e.record(result, res.Time, res.State, u)
		result.Dts = append(result.Dts, res.UsedDt)
	}

	e.finish(result)
	return result, nil
}

func (e *Engine) compute(t float64, s statespace.State) stepper.Control {
	if e.ctrl == nil {
		return nil
	}
	return e.ctrl.Compute(t, s)
}

func (e *Engine) record(result *Result, t float64, s statespace.State, u stepper.Control) {
	for _, m := range e.metrics {
		m.Observe(t, s, u)
	}
	for _, obs := range e.observers {
		obs.OnStep(t, s, u)
	}
	result.Times = append(result.Times, t)
	result.States = append(result.States, s.Clone())
}

func (e *Engine) finish(result *Result) {
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Stats = e.st.Stats()
}
