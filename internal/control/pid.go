package control

import (
	"fmt"

	"github.com/san-kum/phantomgo/internal/dynamo"
	"github.com/san-kum/phantomgo/internal/geom"
)

// PID drives a point toward Target. The derivative term acts on the
// measured velocity, so moving the target does not kick the output.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target geom.Vec3
	// Limit caps |output|. Zero means unlimited.
	Limit float64

	integral geom.Vec3
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd float64, target geom.Vec3) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

func (p *PID) Compute(pos, vel geom.Vec3, t float64) geom.Vec3 {
	err := p.Target.Sub(pos)

	dt := 0.0
	if p.first {
		p.first = false
	} else if t > p.prevT {
		dt = t - p.prevT
	}
	p.prevT = t
	p.integral = p.integral.Add(err.Scale(dt))

	u := err.Scale(p.Kp).
		Add(p.integral.Scale(p.Ki)).
		Sub(vel.Scale(p.Kd))

	if p.Limit > 0 {
		if n := u.Length(); n > p.Limit {
			u = u.Scale(p.Limit / n)
			// no integration while saturated
			p.integral = p.integral.Sub(err.Scale(dt))
		}
	}
	return u
}

// Reset clears integral state
func (p *PID) Reset() {
	p.integral = geom.Zero
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":    p.Kp,
		"Ki":    p.Ki,
		"Kd":    p.Kd,
		"Limit": p.Limit,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s = %v: %w", name, value, dynamo.ErrParameterBounds)
	}
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Limit":
		p.Limit = value
	default:
		return fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParameter)
	}
	return nil
}
