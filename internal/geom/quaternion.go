package geom

import (
	"fmt"
	"math"
)

// Quaternion is a rotation (X, Y, Z, W) with W the scalar part.
type Quaternion struct {
	X, Y, Z, W float64
}

func IdentityQuaternion() Quaternion { return Quaternion{0, 0, 0, 1} }

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f, %.4f)", q.X, q.Y, q.Z, q.W)
}

type extraction int

const (
	fromTrace extraction = iota
	fromXX
	fromYY
	fromZZ
)

// QuaternionFromMatrix extracts the rotation of the upper-left 3×3 of m.
//
// When the trace is non-negative the scalar part is at least 0.5 and the
// direct square-root formula is stable. Otherwise the largest diagonal
// element selects which vector component is computed first, keeping the
// divisor away from zero for rotations near 180°.
func QuaternionFromMatrix(m Matrix) Quaternion {
	q, _ := extract(m)
	return q
}

func extract(m Matrix) (Quaternion, extraction) {
	r00, r11, r22 := m.At(0, 0), m.At(1, 1), m.At(2, 2)
	r01, r10 := m.At(0, 1), m.At(1, 0)
	r02, r20 := m.At(0, 2), m.At(2, 0)
	r12, r21 := m.At(1, 2), m.At(2, 1)

	if trace := r00 + r11 + r22; trace >= 0 {
		s := 0.5 / math.Sqrt(trace+1)
		return Quaternion{
			X: (r21 - r12) * s,
			Y: (r02 - r20) * s,
			Z: (r10 - r01) * s,
			W: 0.25 / s,
		}, fromTrace
	}

	maxYZ := math.Max(r11, r22)
	switch {
	case r00 > maxYZ:
		t := math.Sqrt(1 + r00 - r11 - r22)
		s := 0.5 / t
		return Quaternion{
			X: 0.5 * t,
			Y: (r01 + r10) * s,
			Z: (r02 + r20) * s,
			W: (r21 - r12) * s,
		}, fromXX
	case r11 >= r22:
		t := math.Sqrt(1 + r11 - r22 - r00)
		s := 0.5 / t
		return Quaternion{
			X: (r01 + r10) * s,
			Y: 0.5 * t,
			Z: (r12 + r21) * s,
			W: (r02 - r20) * s,
		}, fromYY
	default:
		t := math.Sqrt(1 + r22 - r00 - r11)
		s := 0.5 / t
		return Quaternion{
			X: (r02 + r20) * s,
			Y: (r12 + r21) * s,
			Z: 0.5 * t,
			W: (r10 - r01) * s,
		}, fromZZ
	}
}
