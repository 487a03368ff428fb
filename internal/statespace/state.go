package statespace

import "math"

// State is one point of the composite space: a configuration vector and a
// velocity vector per block.
type State struct {
	space *Space
	Q     [][]float64
	V     [][]float64
}

// Space returns the layout this state belongs to.
func (st State) Space() *Space { return st.space }

// Clone returns a deep copy.
func (st State) Clone() State {
	c := st.space.NewState()
	st.CopyTo(&c)
	return c
}

// CopyTo copies the state into dst, which must share the same layout.
func (st State) CopyTo(dst *State) {
	for b := range st.Q {
		copy(dst.Q[b], st.Q[b])
		copy(dst.V[b], st.V[b])
	}
}

// IsValid reports whether every component is finite.
func (st State) IsValid() bool {
	for b := range st.Q {
		for _, v := range st.Q[b] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		for _, v := range st.V[b] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Sum applies the scaled increment to every block using that block's
// composition rule and writes the result to out. A zero increment reproduces
// the state exactly. out must not alias the receiver's storage unless it is
// the receiver itself.
func (st State) Sum(incr Tangent, scale float64, out *State) {
	for b, sub := range st.space.subs {
		switch sub.Kind {
		case Euclidean:
			for i := range st.Q[b] {
				out.Q[b][i] = st.Q[b][i] + scale*incr.DQ[b][i]
			}
		case Angle:
			for i := range st.Q[b] {
				out.Q[b][i] = wrapAngle(st.Q[b][i] + scale*incr.DQ[b][i])
			}
		case UnitQuaternion:
			var w [3]float64
			w[0] = scale * incr.DQ[b][0]
			w[1] = scale * incr.DQ[b][1]
			w[2] = scale * incr.DQ[b][2]
			q := quatIntegrate([4]float64{st.Q[b][0], st.Q[b][1], st.Q[b][2], st.Q[b][3]}, w)
			out.Q[b][0], out.Q[b][1], out.Q[b][2], out.Q[b][3] = q[0], q[1], q[2], q[3]
		}
		for i := range st.V[b] {
			out.V[b][i] = st.V[b][i] + scale*incr.DV[b][i]
		}
	}
}

// Difference computes the velocity-space increment from other to the
// receiver, block by block, and writes it to out. It is the local inverse of
// Sum: st.Sum(d, 1).Difference(st) recovers d for small d.
func (st State) Difference(other State, out *Tangent) {
	for b, sub := range st.space.subs {
		switch sub.Kind {
		case Euclidean:
			for i := range st.Q[b] {
				out.DQ[b][i] = st.Q[b][i] - other.Q[b][i]
			}
		case Angle:
			for i := range st.Q[b] {
				out.DQ[b][i] = wrapAngle(st.Q[b][i] - other.Q[b][i])
			}
		case UnitQuaternion:
			d := quatDifference(
				[4]float64{st.Q[b][0], st.Q[b][1], st.Q[b][2], st.Q[b][3]},
				[4]float64{other.Q[b][0], other.Q[b][1], other.Q[b][2], other.Q[b][3]},
			)
			out.DQ[b][0], out.DQ[b][1], out.DQ[b][2] = d[0], d[1], d[2]
		}
		for i := range st.V[b] {
			out.DV[b][i] = st.V[b][i] - other.V[b][i]
		}
	}
}

// wrapAngle maps x to (-pi, pi]. Values already in range pass through
// unchanged so that zero-increment sums stay exact.
func wrapAngle(x float64) float64 {
	if x > -math.Pi && x <= math.Pi {
		return x
	}
	x = math.Mod(x+math.Pi, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x - math.Pi
}

// Tangent is a flat velocity-space increment: one config-rate vector and one
// acceleration vector per block, both of the block's velocity dimension.
type Tangent struct {
	space *Space
	DQ    [][]float64
	DV    [][]float64
}

// Space returns the layout this tangent belongs to.
func (tg Tangent) Space() *Space { return tg.space }

// Clone returns a deep copy.
func (tg Tangent) Clone() Tangent {
	c := tg.space.NewTangent()
	tg.CopyTo(&c)
	return c
}

// CopyTo copies the tangent into dst, which must share the same layout.
func (tg Tangent) CopyTo(dst *Tangent) {
	for b := range tg.DQ {
		copy(dst.DQ[b], tg.DQ[b])
		copy(dst.DV[b], tg.DV[b])
	}
}

// SetZero clears every component.
func (tg Tangent) SetZero() {
	for b := range tg.DQ {
		for i := range tg.DQ[b] {
			tg.DQ[b][i] = 0
		}
		for i := range tg.DV[b] {
			tg.DV[b][i] = 0
		}
	}
}

// Axpy accumulates coeff*other into the receiver.
func (tg Tangent) Axpy(other Tangent, coeff float64) {
	for b := range tg.DQ {
		for i := range tg.DQ[b] {
			tg.DQ[b][i] += coeff * other.DQ[b][i]
		}
		for i := range tg.DV[b] {
			tg.DV[b][i] += coeff * other.DV[b][i]
		}
	}
}

// Scale multiplies every component in place.
func (tg Tangent) Scale(f float64) {
	for b := range tg.DQ {
		for i := range tg.DQ[b] {
			tg.DQ[b][i] *= f
		}
		for i := range tg.DV[b] {
			tg.DV[b][i] *= f
		}
	}
}

// Div divides the receiver element-wise by other, with IEEE semantics for
// zero denominators. The error estimator relies on those semantics.
func (tg Tangent) Div(other Tangent) {
	for b := range tg.DQ {
		for i := range tg.DQ[b] {
			tg.DQ[b][i] /= other.DQ[b][i]
		}
		for i := range tg.DV[b] {
			tg.DV[b][i] /= other.DV[b][i]
		}
	}
}

// NormInf returns the largest absolute component. NaN anywhere makes the
// result NaN so that degenerate dynamics are never mistaken for small error.
func (tg Tangent) NormInf() float64 {
	max := 0.0
	for b := range tg.DQ {
		for _, v := range tg.DQ[b] {
			if math.IsNaN(v) {
				return v
			}
			if a := math.Abs(v); a > max {
				max = a
			}
		}
		for _, v := range tg.DV[b] {
			if math.IsNaN(v) {
				return v
			}
			if a := math.Abs(v); a > max {
				max = a
			}
		}
	}
	return max
}
