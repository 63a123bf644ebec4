package geom

import (
	"fmt"
	"math"
)

// Matrix is a 4×4 homogeneous transform stored column-major, exactly as
// the device runtime writes it.
type Matrix [16]float64

func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// MatrixFromSlice copies the first 16 elements of s.
func MatrixFromSlice(s []float64) Matrix {
	var m Matrix
	copy(m[:], s)
	return m
}

// Slice returns the raw storage. Writes through it modify m.
func (m *Matrix) Slice() []float64 { return m[:] }

// Index returns the raw element i (0..15) of the column-major storage.
func (m Matrix) Index(i int) float64 { return m[i] }

// At returns the element at row r, column c.
func (m Matrix) At(r, c int) float64 { return m[c*4+r] }

func (m *Matrix) SetAt(r, c int, v float64) { m[c*4+r] = v }

func (m Matrix) Translation() Vec3 { return Vec3{m[12], m[13], m[14]} }

func (m *Matrix) SetTranslation(v Vec3) {
	m[12], m[13], m[14] = v.X, v.Y, v.Z
}

// Rotate applies the upper-left 3×3 rotation to v.
func (m Matrix) Rotate(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Mul returns m·o.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m.At(r, k) * o.At(k, c)
			}
			out.SetAt(r, c, sum)
		}
	}
	return out
}

func (m Matrix) Trace3() float64 { return m[0] + m[5] + m[10] }

// RotationX returns a pure rotation of theta radians about +X.
func RotationX(theta float64) Matrix {
	s, c := math.Sincos(theta)
	m := Identity()
	m.SetAt(1, 1, c)
	m.SetAt(1, 2, -s)
	m.SetAt(2, 1, s)
	m.SetAt(2, 2, c)
	return m
}

func RotationY(theta float64) Matrix {
	s, c := math.Sincos(theta)
	m := Identity()
	m.SetAt(0, 0, c)
	m.SetAt(0, 2, s)
	m.SetAt(2, 0, -s)
	m.SetAt(2, 2, c)
	return m
}

func RotationZ(theta float64) Matrix {
	s, c := math.Sincos(theta)
	m := Identity()
	m.SetAt(0, 0, c)
	m.SetAt(0, 1, -s)
	m.SetAt(1, 0, s)
	m.SetAt(1, 1, c)
	return m
}

func (m Matrix) String() string {
	return fmt.Sprintf("[ [%.3f, %.3f, %.3f, %.3f]^T, [%.3f, %.3f, %.3f, %.3f]^T, [%.3f, %.3f, %.3f, %.3f]^T, [%.3f, %.3f, %.3f, %.3f]^T ]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7],
		m[8], m[9], m[10], m[11], m[12], m[13], m[14], m[15])
}
