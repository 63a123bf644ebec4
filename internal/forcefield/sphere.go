package forcefield

import (
	"errors"
	"fmt"

	"github.com/san-kum/phantomgo/internal/geom"
)

var ErrInvalidParameter = errors.New("forcefield: invalid parameter")

// Field maps tip kinematics to a force.
type Field interface {
	Force(pos, vel geom.Vec3) geom.Vec3
}

// Penetrator is implemented by fields with a surface the tip can sink into.
type Penetrator interface {
	Penetration(pos geom.Vec3) float64
}

type RigidSphere struct {
	Center     geom.Vec3
	Radius     float64
	Stiffness  float64 // N/mm
	Damping    float64 // N·s/mm
	ForceLimit float64 // N
}

// NewRigidSphere returns a sphere with stiffness 1.0, no damping and a
// 3.0 N limit.
func NewRigidSphere(center geom.Vec3, radius float64) RigidSphere {
	return RigidSphere{
		Center:     center,
		Radius:     radius,
		Stiffness:  1.0,
		ForceLimit: 3.0,
	}
}

func (s RigidSphere) Validate() error {
	switch {
	case s.Radius < 0:
		return fmt.Errorf("%w: radius %v", ErrInvalidParameter, s.Radius)
	case s.Stiffness < 0:
		return fmt.Errorf("%w: stiffness %v", ErrInvalidParameter, s.Stiffness)
	case s.Damping < 0:
		return fmt.Errorf("%w: damping %v", ErrInvalidParameter, s.Damping)
	case s.ForceLimit < 0:
		return fmt.Errorf("%w: force limit %v", ErrInvalidParameter, s.ForceLimit)
	}
	return nil
}

// Force returns the restoring force on a tip at pos moving at vel. Outside
// the sphere, on its surface and at its exact center the force is zero. The
// elastic part is capped at ForceLimit; the viscous part is not.
func (s RigidSphere) Force(pos, vel geom.Vec3) geom.Vec3 {
	delta := pos.Sub(s.Center)
	d := delta.Length()
	if d >= s.Radius || d == 0 {
		return geom.Zero
	}

	mag := min(s.Stiffness*(s.Radius-d), s.ForceLimit)
	return delta.Div(d).Scale(mag).Sub(vel.Scale(s.Damping))
}

// Penetration returns how far pos lies below the surface, or 0 outside.
func (s RigidSphere) Penetration(pos geom.Vec3) float64 {
	d := pos.Sub(s.Center).Length()
	if d >= s.Radius {
		return 0
	}
	return s.Radius - d
}

// Clamp rescales f onto the sphere of radius limit when it is longer and
// reports whether it did.
func Clamp(f geom.Vec3, limit float64) (geom.Vec3, bool) {
	m := f.Length()
	if m <= limit || m == 0 {
		return f, false
	}
	return f.Scale(limit / m), true
}
