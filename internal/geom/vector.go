package geom

import (
	"fmt"
	"math"
)

// Vec3 is a 3D vector. Components are indexed 0, 1, 2 for X, Y, Z.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the vector with all components 0.
var Zero = Vec3{}

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// FromSlice builds a vector from the first three elements of s.
func FromSlice(s []float64) Vec3 {
	return Vec3{s[0], s[1], s[2]}
}

func FromArray(a [3]float64) Vec3 { return Vec3{a[0], a[1], a[2]} }

func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Slice returns a freshly allocated []float64{X, Y, Z}.
func (v Vec3) Slice() []float64 { return []float64{v.X, v.Y, v.Z} }

// CopyTo writes the components into dst[0:3] without allocating.
func (v Vec3) CopyTo(dst []float64) {
	dst[0], dst[1], dst[2] = v.X, v.Y, v.Z
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }

// Div divides every component by k. A zero k yields Inf or NaN components.
func (v Vec3) Div(k float64) Vec3 { return Vec3{v.X / k, v.Y / k, v.Z / k} }

func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) LengthSquared() float64 { return v.Dot(v) }

// Length is the Euclidean norm.
func (v Vec3) Length() float64 { return math.Sqrt(v.LengthSquared()) }

// At returns component i. Indices outside 0..2 read as 0.
func (v Vec3) At(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	return 0
}

// Set returns a copy of v with component i replaced. Indices outside
// 0..2 leave the vector unchanged.
func (v Vec3) Set(i int, val float64) Vec3 {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	case 2:
		v.Z = val
	}
	return v
}

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vec3) String() string {
	return fmt.Sprintf("%.3f, %.3f, %.3f", v.X, v.Y, v.Z)
}
