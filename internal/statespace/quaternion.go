package statespace

import "math"

// Quaternions are stored [w x y z]. Increments are body-frame rotation
// vectors, composed on the right: q' = q * exp(w).

const smallAngle = 1e-8

func quatMul(a, b [4]float64) [4]float64 {
	return [4]float64{
		a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3],
		a[0]*b[1] + a[1]*b[0] + a[2]*b[3] - a[3]*b[2],
		a[0]*b[2] - a[1]*b[3] + a[2]*b[0] + a[3]*b[1],
		a[0]*b[3] + a[1]*b[2] - a[2]*b[1] + a[3]*b[0],
	}
}

func quatConj(q [4]float64) [4]float64 {
	return [4]float64{q[0], -q[1], -q[2], -q[3]}
}

// quatExp maps a rotation vector to a unit quaternion.
func quatExp(w [3]float64) [4]float64 {
	theta := math.Sqrt(w[0]*w[0] + w[1]*w[1] + w[2]*w[2])
	if theta < smallAngle {
		// First-order expansion; renormalized below anyway.
		return [4]float64{1, 0.5 * w[0], 0.5 * w[1], 0.5 * w[2]}
	}
	s := math.Sin(0.5*theta) / theta
	return [4]float64{math.Cos(0.5 * theta), s * w[0], s * w[1], s * w[2]}
}

// quatLog maps a unit quaternion near identity to a rotation vector.
func quatLog(q [4]float64) [3]float64 {
	if q[0] < 0 {
		q = [4]float64{-q[0], -q[1], -q[2], -q[3]}
	}
	vn := math.Sqrt(q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if vn < smallAngle {
		return [3]float64{2 * q[1], 2 * q[2], 2 * q[3]}
	}
	theta := 2 * math.Atan2(vn, q[0])
	s := theta / vn
	return [3]float64{s * q[1], s * q[2], s * q[3]}
}

// quatIntegrate applies a body-frame rotation vector to q and renormalizes
// to keep unit norm under accumulated rounding.
func quatIntegrate(q [4]float64, w [3]float64) [4]float64 {
	if w[0] == 0 && w[1] == 0 && w[2] == 0 {
		return q
	}
	r := quatMul(q, quatExp(w))
	n := math.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2] + r[3]*r[3])
	return [4]float64{r[0] / n, r[1] / n, r[2] / n, r[3] / n}
}

// quatDifference returns the body-frame rotation vector taking b to a along
// the shortest arc.
func quatDifference(a, b [4]float64) [3]float64 {
	return quatLog(quatMul(quatConj(b), a))
}
