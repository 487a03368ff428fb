package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kirella/bodysim/internal/metrics"
	"github.com/kirella/bodysim/internal/models"
	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

func newOscillatorEngine(t *testing.T, tol float64) (*Engine, *models.SpringMass) {
	t.Helper()
	sys := models.NewSpringMass()
	st, err := stepper.New(sys, stepper.DOPRI54(), tol, tol)
	if err != nil {
		t.Fatalf("stepper.New: %v", err)
	}
	return New(st, nil), sys
}

func TestRun_ReachesTargetDuration(t *testing.T) {
	eng, sys := newOscillatorEngine(t, 1e-9)

	duration := 3.7
	result, err := eng.Run(context.Background(), sys.State(1, 0), Config{Duration: duration, InitialDt: 1e-2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	final := result.Times[len(result.Times)-1]
	if math.Abs(final-duration) > 1e-9 {
		t.Errorf("run ended at t=%v, expected %v", final, duration)
	}
	if len(result.States) != len(result.Times) {
		t.Error("state and time series lengths disagree")
	}
	if len(result.Dts) != len(result.Times)-1 {
		t.Error("dt series length disagrees with steps taken")
	}
	if result.Stats.Accepted == 0 {
		t.Error("no accepted steps in stats")
	}

	// Closed-form solution x(t) = cos(t) for the unit oscillator.
	x := result.States[len(result.States)-1]
	if math.Abs(x.Q[0][0]-math.Cos(duration)) > 1e-6 {
		t.Errorf("expected x=%v, got %v", math.Cos(duration), x.Q[0][0])
	}
}

func TestRun_MetricsObserved(t *testing.T) {
	eng, sys := newOscillatorEngine(t, 1e-9)
	drift := metrics.NewEnergyDrift(sys)
	stepSizes := metrics.NewStepSize()
	eng.AddMetric(drift)
	eng.AddMetric(stepSizes)

	result, err := eng.Run(context.Background(), sys.State(1, 0), Config{Duration: 5, InitialDt: 1e-2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if v, ok := result.Metrics["energy_drift"]; !ok || v > 1e-6 {
		t.Errorf("energy drift metric missing or too large: %v", v)
	}
	if v, ok := result.Metrics["step_size"]; !ok || v <= 0 {
		t.Errorf("step size metric missing or non-positive: %v", v)
	}
}

type countingObserver struct{ calls int }

func (c *countingObserver) OnStep(t float64, s statespace.State, u stepper.Control) { c.calls++ }

func TestRun_ObserversNotified(t *testing.T) {
	eng, sys := newOscillatorEngine(t, 1e-6)
	obs := &countingObserver{}
	eng.AddObserver(obs)

	result, err := eng.Run(context.Background(), sys.State(1, 0), Config{Duration: 1, InitialDt: 1e-2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if obs.calls != len(result.Times) {
		t.Errorf("observer saw %d steps, result has %d", obs.calls, len(result.Times))
	}
}

func TestRun_ContextCancel(t *testing.T) {
	eng, sys := newOscillatorEngine(t, 1e-9)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := eng.Run(ctx, sys.State(1, 0), Config{Duration: 10, InitialDt: 1e-2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || len(result.Times) == 0 {
		t.Error("expected partial result on cancellation")
	}
}

func TestRun_InvalidDuration(t *testing.T) {
	eng, sys := newOscillatorEngine(t, 1e-9)
	if _, err := eng.Run(context.Background(), sys.State(1, 0), Config{Duration: 0}); err == nil {
		t.Error("expected error for zero duration")
	}
}

type pdController struct{ kp, kd, target float64 }

func (c *pdController) Compute(t float64, s statespace.State) stepper.Control {
	return stepper.Control{c.kp*(c.target-s.Q[0][0]) - c.kd*s.V[0][0]}
}

func TestRun_WithController(t *testing.T) {
	sys := models.NewSpringMass()
	sys.Damping = 0.5
	st, err := stepper.New(sys, stepper.DOPRI54(), 1e-8, 1e-8)
	if err != nil {
		t.Fatalf("stepper.New: %v", err)
	}
	eng := New(st, &pdController{kp: 20, kd: 5, target: 1})

	result, err := eng.Run(context.Background(), sys.State(0, 0), Config{Duration: 20, InitialDt: 1e-2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	x := result.States[len(result.States)-1]
	if math.Abs(x.Q[0][0]-20.0/21.0) > 1e-3 {
		t.Errorf("controller failed to settle near steady state: %v", x.Q[0][0])
	}
}
