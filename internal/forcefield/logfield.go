package forcefield

import (
	"fmt"
	"math"

	"github.com/san-kum/phantomgo/internal/geom"
)

// LogField pushes the tip away from Target. The magnitude is
// Gain·ln(Radius/d) + Gain, so it equals Gain at distance Radius, falls to
// zero at Radius·e and is capped at MaxForce close in. Inside DeadZone the
// direction is unreliable and no force is produced.
type LogField struct {
	Target   geom.Vec3
	Gain     float64 // N
	Radius   float64 // mm
	MaxForce float64 // N
	DeadZone float64 // mm
}

func NewLogField(target geom.Vec3) LogField {
	return LogField{
		Target:   target,
		Gain:     0.5,
		Radius:   50,
		MaxForce: 0.8,
		DeadZone: 0.5,
	}
}

func (f LogField) Validate() error {
	switch {
	case f.Radius <= 0:
		return fmt.Errorf("%w: radius %v", ErrInvalidParameter, f.Radius)
	case f.Gain < 0:
		return fmt.Errorf("%w: gain %v", ErrInvalidParameter, f.Gain)
	case f.MaxForce < 0:
		return fmt.Errorf("%w: max force %v", ErrInvalidParameter, f.MaxForce)
	case f.DeadZone < 0:
		return fmt.Errorf("%w: dead zone %v", ErrInvalidParameter, f.DeadZone)
	}
	return nil
}

// Force ignores vel.
func (f LogField) Force(pos, _ geom.Vec3) geom.Vec3 {
	delta := pos.Sub(f.Target)
	d := delta.Length()
	if d < f.DeadZone || d == 0 {
		return geom.Zero
	}

	mag := f.Gain*math.Log(f.Radius/d) + f.Gain
	mag = max(0, min(mag, f.MaxForce))
	return delta.Div(d).Scale(mag)
}
