// Package metrics provides observation hooks the engine feeds during a run.
package metrics

import (
	"github.com/kirella/bodysim/internal/statespace"
	"github.com/kirella/bodysim/internal/stepper"
)

// Metric accumulates a scalar over the course of a run.
type Metric interface {
	Name() string
	Observe(t float64, s statespace.State, u stepper.Control)
	Value() float64
	Reset()
}
