package models

import (
	"math"
	"testing"

	"github.com/kirella/bodysim/internal/stepper"
)

func TestRigidBody_TorqueFreeConservation(t *testing.T) {
	rb := NewRigidBody()
	st, err := stepper.New(rb, stepper.DOPRI54(), 1e-10, 1e-10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Spin near the unstable intermediate axis to get rich tumbling.
	x0 := rb.State(0.05, 2.0, 0.05)
	if err := st.Start(0, x0, 1e-2, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e0 := rb.Energy(x0)
	l0 := rb.MomentumNorm(x0)

	for st.Time() < 20.0 {
		if _, err := st.TryStep(nil, 0); err != nil {
			t.Fatalf("TryStep at t=%v: %v", st.Time(), err)
		}
	}

	x := st.State()
	if drift := math.Abs(rb.Energy(x)-e0) / e0; drift > 1e-6 {
		t.Errorf("rotational energy drift too high: %e", drift)
	}
	if drift := math.Abs(rb.MomentumNorm(x)-l0) / l0; drift > 1e-6 {
		t.Errorf("angular momentum drift too high: %e", drift)
	}

	n := 0.0
	for _, q := range x.Q[0] {
		n += q * q
	}
	if math.Abs(n-1.0) > 1e-9 {
		t.Errorf("attitude quaternion lost unit norm: %v", math.Sqrt(n))
	}
}

func TestRigidBody_SteadySpinAboutPrincipalAxis(t *testing.T) {
	rb := NewRigidBody()
	st, err := stepper.New(rb, stepper.DOPRI54(), 1e-9, 1e-9)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := 1.5
	x0 := rb.State(w, 0, 0)
	if err := st.Start(0, x0, 1e-2, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for st.Time() < 5.0 {
		if _, err := st.TryStep(nil, 0); err != nil {
			t.Fatalf("TryStep: %v", err)
		}
	}

	x := st.State()
	if math.Abs(x.V[0][0]-w) > 1e-7 {
		t.Errorf("principal-axis spin rate changed: %v", x.V[0][0])
	}
	if math.Abs(x.V[0][1]) > 1e-7 || math.Abs(x.V[0][2]) > 1e-7 {
		t.Errorf("spurious off-axis rates: %v %v", x.V[0][1], x.V[0][2])
	}
}

func TestRigidBody_ControlTorque(t *testing.T) {
	rb := NewRigidBody()
	s := rb.State(0, 0, 0)
	acc := rb.Space().NewAccel()

	if err := rb.Derive(0, s, stepper.Control{1, 2, 3}, acc); err != nil {
		t.Fatalf("Derive: %v", err)
	}
	if acc[0][0] != 1/rb.Ixx || acc[0][1] != 2/rb.Iyy || acc[0][2] != 3/rb.Izz {
		t.Errorf("torque mapping wrong: %v", acc[0])
	}
}
