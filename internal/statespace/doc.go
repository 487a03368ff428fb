// Package statespace provides the composite state representation used by the
// adaptive steppers.
//
// A [Space] is an ordered list of subsystem blocks, each holding a
// configuration vector and a velocity vector. Configuration blocks may be
// non-Euclidean (wrapped angles, unit quaternions), so states are combined
// through two primitives instead of plain vector arithmetic:
//
//   - [State.Sum]: apply a scaled velocity-space increment, using each
//     block's own composition rule
//   - [State.Difference]: the local inverse, defined for nearby states
//
// [Tangent] is the flat velocity-space increment type. It supports the
// element-wise operations the error estimator needs (Axpy, Scale, Div,
// NormInf, SetZero).
//
// The set of block kinds is closed. Integrators never branch on a kind;
// they only call Sum and Difference.
package statespace
