// Package coords converts between the device frame and the frame of the
// engine consuming it.
//
// The device is right-handed with lengths in mm. An [Adapter] flips axes
// and scales lengths for the consumer, and locates the tool tip from the
// gimbal pose.
package coords

import (
	"errors"
	"fmt"

	"github.com/san-kum/phantomgo/internal/geom"
)

var ErrInvalidAdapter = errors.New("coords: invalid adapter")

type Adapter struct {
	// Flip holds a sign (+1 or -1) per axis.
	Flip geom.Vec3
	// Scale converts mm to consumer length units.
	Scale float64
	// TipOffset is the tool tip in the stylus frame, in mm.
	TipOffset geom.Vec3
}

// Default returns the left-handed adapter used by most game engines: Z
// negated, mm kept, tip 40 mm down the pen.
func Default() Adapter {
	return Adapter{
		Flip:      geom.V(1, 1, -1),
		Scale:     1,
		TipOffset: geom.V(0, 0, -40),
	}
}

// Identity keeps device coordinates and uses the gimbal point as the tip.
func Identity() Adapter {
	return Adapter{Flip: geom.V(1, 1, 1), Scale: 1}
}

func (a Adapter) Validate() error {
	for i := 0; i < 3; i++ {
		if s := a.Flip.At(i); s != 1 && s != -1 {
			return fmt.Errorf("%w: flip[%d] = %v", ErrInvalidAdapter, i, s)
		}
	}
	if a.Scale <= 0 {
		return fmt.Errorf("%w: scale %v", ErrInvalidAdapter, a.Scale)
	}
	return nil
}

// Position maps a device point or velocity into the consumer frame.
func (a Adapter) Position(p geom.Vec3) geom.Vec3 {
	return p.Mul(a.Flip).Scale(a.Scale)
}

// Direction applies the axis flips only. Use it for forces and unit vectors.
func (a Adapter) Direction(v geom.Vec3) geom.Vec3 {
	return v.Mul(a.Flip)
}

// ToDevice maps a consumer-frame force back to the device frame.
func (a Adapter) ToDevice(f geom.Vec3) geom.Vec3 {
	return f.Mul(a.Flip)
}

// PositionToDevice is the inverse of Position.
func (a Adapter) PositionToDevice(p geom.Vec3) geom.Vec3 {
	return p.Div(a.Scale).Mul(a.Flip)
}

// TipPosition returns gimbal + R·TipOffset in the device frame, R being
// the rotation part of transform.
func (a Adapter) TipPosition(gimbal geom.Vec3, transform geom.Matrix) geom.Vec3 {
	return gimbal.Add(transform.Rotate(a.TipOffset))
}

// Rotation returns the stylus orientation in the consumer frame. Mirroring
// the axes turns the rotation axis into det·Flip·axis while the angle
// keeps its sign.
func (a Adapter) Rotation(transform geom.Matrix) geom.Quaternion {
	q := geom.QuaternionFromMatrix(transform)
	det := a.Flip.X * a.Flip.Y * a.Flip.Z
	return geom.Quaternion{
		X: det * a.Flip.X * q.X,
		Y: det * a.Flip.Y * q.Y,
		Z: det * a.Flip.Z * q.Z,
		W: q.W,
	}
}
