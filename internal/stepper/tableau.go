package stepper

import (
	"fmt"
	"math"
)

// Tableau holds the Butcher coefficients of an explicit embedded Runge-Kutta
// pair plus the method-specific step-control constants. A is ragged and
// strictly lower triangular: row i holds the i coefficients for stages j < i.
// B weights the primary solution; E weights the embedded lower-order one.
// Tableaus are constant data; callers must not mutate them.
type Tableau struct {
	Name  string
	Order int

	A [][]float64
	B []float64
	E []float64
	C []float64

	Safety    float64
	MinFactor float64
	MaxFactor float64
}

// Stages returns the stage count of the method.
func (tab *Tableau) Stages() int { return len(tab.B) }

func (tab *Tableau) validate() error {
	s := len(tab.B)
	if s == 0 {
		return fmt.Errorf("%w: %s has no stages", ErrTableau, tab.Name)
	}
	if len(tab.C) != s || len(tab.E) != s || len(tab.A) != s {
		return fmt.Errorf("%w: %s coefficient lengths disagree", ErrTableau, tab.Name)
	}
	for i, row := range tab.A {
		if len(row) != i {
			return fmt.Errorf("%w: %s A row %d has %d entries, want %d", ErrTableau, tab.Name, i, len(row), i)
		}
	}
	if tab.Order < 3 {
		return fmt.Errorf("%w: %s order %d is below the minimum for embedded control", ErrTableau, tab.Name, tab.Order)
	}
	if tab.Safety <= 0 || tab.MinFactor <= 0 || tab.MaxFactor <= tab.Safety {
		return fmt.Errorf("%w: %s has invalid control constants", ErrTableau, tab.Name)
	}
	return nil
}

// adjustStep applies the step-control law to an error metric, returning the
// step size for the next attempt and whether the trial step is accepted.
//
// A NaN metric carries no magnitude information, so the step is shrunk by a
// fixed factor and rejected. Below 1 the step is accepted, growing only when
// the error is already under safety^order; the clamp keeps a near-zero error
// from blowing the growth ratio past MaxFactor. At or above 1 the step is
// rejected, shrinking by at most MinFactor; the rejection exponent uses
// order-2 per the embedded-pair convention.
func adjustStep(tab *Tableau, err float64, dt float64) (float64, bool) {
	if math.IsNaN(err) {
		return dt * 0.1, false
	}
	order := float64(tab.Order)
	if err < 1.0 {
		if err < math.Pow(tab.Safety, order) {
			clamped := math.Max(err, math.Pow(tab.MaxFactor/tab.Safety, -order))
			dt *= tab.Safety * math.Pow(clamped, -1.0/order)
		}
		return dt, true
	}
	return dt * math.Max(tab.Safety*math.Pow(err, -1.0/(order-2)), tab.MinFactor), false
}

// DOPRI54 returns the Dormand-Prince 5(4) pair, the adaptive method used by
// MATLAB's ode45. The seventh stage reuses the primary solution (FSAL
// structure), so the embedded estimate costs one extra evaluation per step.
//
// Reference: J.R. Dormand & P.J. Prince, "A family of embedded Runge-Kutta
// formulae", J. Comput. Appl. Math. 6 (1980) 19-26.
func DOPRI54() *Tableau {
	return &Tableau{
		Name:  "dopri54",
		Order: 5,
		C:     []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
		A: [][]float64{
			{},
			{1.0 / 5.0},
			{3.0 / 40.0, 9.0 / 40.0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
		},
		B: []float64{
			35.0 / 384.0,
			0,
			500.0 / 1113.0,
			125.0 / 192.0,
			-2187.0 / 6784.0,
			11.0 / 84.0,
			0,
		},
		E: []float64{
			5179.0 / 57600.0,
			0,
			7571.0 / 16695.0,
			393.0 / 640.0,
			-92097.0 / 339200.0,
			187.0 / 2100.0,
			1.0 / 40.0,
		},
		Safety:    0.9,
		MinFactor: 0.2,
		MaxFactor: 5.0,
	}
}
