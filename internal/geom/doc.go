// Package geom provides the value types shared by the device session,
// the force fields and the coordinate adapter.
//
//   - [Vec3]: 3D vector in device units (mm, mm/s, N or rad)
//   - [Matrix]: 4×4 pose transform in the device's column-major layout
//   - [Quaternion]: unit rotation extracted from a [Matrix]
//
// All operations are total. Division by zero is not guarded and yields
// IEEE infinities or NaN, the same as the device runtime's own arithmetic.
//
// # Layout
//
// The device reports transforms as 16 doubles in column-major order, so
// the translation lives in elements 12, 13 and 14 and the rotation
// element at row r, column c is stored at index c*4+r:
//
//	m := geom.Identity()
//	m.At(1, 0)      // R10, stored at m[1]
//	m.Translation() // m[12], m[13], m[14]
package geom
