package statespace

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates a malformed subsystem descriptor at construction.
var ErrConfiguration = errors.New("statespace: invalid subsystem configuration")

// Kind selects the composition rule for a subsystem's configuration block.
type Kind int

const (
	// Euclidean blocks compose by plain element-wise addition.
	Euclidean Kind = iota
	// Angle blocks are scalar rotations wrapped to (-pi, pi].
	Angle
	// UnitQuaternion blocks hold a 3D attitude as [w x y z] with a
	// 3-dimensional body-frame angular velocity.
	UnitQuaternion
)

func (k Kind) String() string {
	switch k {
	case Euclidean:
		return "euclidean"
	case Angle:
		return "angle"
	case UnitQuaternion:
		return "quaternion"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Subsystem describes one block of the composite state.
type Subsystem struct {
	Name        string
	ConfigDim   int
	VelocityDim int
	Kind        Kind
}

func (s Subsystem) validate() error {
	if s.ConfigDim <= 0 || s.VelocityDim <= 0 {
		return fmt.Errorf("%w: subsystem %q has non-positive dimensions (%d, %d)",
			ErrConfiguration, s.Name, s.ConfigDim, s.VelocityDim)
	}
	switch s.Kind {
	case Euclidean, Angle:
		if s.ConfigDim != s.VelocityDim {
			return fmt.Errorf("%w: subsystem %q kind %s requires configDim == velocityDim, got %d and %d",
				ErrConfiguration, s.Name, s.Kind, s.ConfigDim, s.VelocityDim)
		}
	case UnitQuaternion:
		if s.ConfigDim != 4 || s.VelocityDim != 3 {
			return fmt.Errorf("%w: subsystem %q kind %s requires configDim 4 and velocityDim 3, got %d and %d",
				ErrConfiguration, s.Name, s.Kind, s.ConfigDim, s.VelocityDim)
		}
	default:
		return fmt.Errorf("%w: subsystem %q has unknown kind %d", ErrConfiguration, s.Name, int(s.Kind))
	}
	return nil
}

// Space is an immutable layout of subsystem blocks. The block count and
// per-block dimensions are fixed for the lifetime of an integration run.
type Space struct {
	subs []Subsystem
}

// NewSpace validates the descriptors and builds a layout.
func NewSpace(subs ...Subsystem) (*Space, error) {
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: no subsystems", ErrConfiguration)
	}
	for _, s := range subs {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	sp := &Space{subs: make([]Subsystem, len(subs))}
	copy(sp.subs, subs)
	return sp, nil
}

// MustSpace is a construction helper for layouts known valid at compile time.
func MustSpace(subs ...Subsystem) *Space {
	sp, err := NewSpace(subs...)
	if err != nil {
		panic(err)
	}
	return sp
}

// Blocks returns the number of subsystem blocks.
func (sp *Space) Blocks() int { return len(sp.subs) }

// Subsystem returns the descriptor of block i.
func (sp *Space) Subsystem(i int) Subsystem { return sp.subs[i] }

// VelocityDim returns the total velocity-space dimension across all blocks.
func (sp *Space) VelocityDim() int {
	n := 0
	for _, s := range sp.subs {
		n += s.VelocityDim
	}
	return n
}

// NewState allocates a state with every Euclidean component zeroed and every
// quaternion block set to the identity rotation.
func (sp *Space) NewState() State {
	st := State{
		space: sp,
		Q:     make([][]float64, len(sp.subs)),
		V:     make([][]float64, len(sp.subs)),
	}
	for i, s := range sp.subs {
		st.Q[i] = make([]float64, s.ConfigDim)
		st.V[i] = make([]float64, s.VelocityDim)
		if s.Kind == UnitQuaternion {
			st.Q[i][0] = 1
		}
	}
	return st
}

// NewTangent allocates a zero velocity-space increment.
func (sp *Space) NewTangent() Tangent {
	tg := Tangent{
		space: sp,
		DQ:    make([][]float64, len(sp.subs)),
		DV:    make([][]float64, len(sp.subs)),
	}
	for i, s := range sp.subs {
		tg.DQ[i] = make([]float64, s.VelocityDim)
		tg.DV[i] = make([]float64, s.VelocityDim)
	}
	return tg
}

// NewAccel allocates a velocity-shaped buffer for dynamics output.
func (sp *Space) NewAccel() [][]float64 {
	acc := make([][]float64, len(sp.subs))
	for i, s := range sp.subs {
		acc[i] = make([]float64, s.VelocityDim)
	}
	return acc
}
