package simdevice

import (
	"math"

	"github.com/san-kum/phantomgo/internal/dynamo"
	"github.com/san-kum/phantomgo/internal/geom"
)

// stylus is a 3-DOF point mass. State is [x y z vx vy vz] in mm and mm/s,
// control is the net applied force in N.
type stylus struct {
	mass     float64
	friction float64
}

func (s *stylus) StateDim() int   { return 6 }
func (s *stylus) ControlDim() int { return 3 }

func (s *stylus) Derive(x dynamo.State, u dynamo.Control, t float64, dx dynamo.State) {
	for i := 0; i < 3; i++ {
		dx[i] = x[3+i]
		// N/kg is m/s², the state is in mm.
		dx[3+i] = (u[i] - s.friction*x[3+i]) / s.mass * 1000
	}
}

// target returns where the scripted hand wants the stylus at time t.
func (o *Options) target(t float64) geom.Vec3 {
	if o.Period <= 0 {
		return o.Center
	}
	phase := 2 * math.Pi * t / o.Period.Seconds()
	switch o.Motion {
	case MotionSweep:
		return o.Center.Add(geom.V(o.Amplitude*math.Sin(phase), 0, 0))
	case MotionCircle:
		s, c := math.Sincos(phase)
		return o.Center.Add(geom.V(o.Amplitude*c, o.Amplitude*s, 0))
	default:
		return o.Center
	}
}

// gimbalTransform builds the stylus orientation from gimbal angles
// (yaw about Y, pitch about X, roll about Z) and places it at pos.
func gimbalTransform(gimbal, pos geom.Vec3) geom.Matrix {
	m := geom.RotationY(gimbal.X).Mul(geom.RotationX(gimbal.Y)).Mul(geom.RotationZ(gimbal.Z))
	m.SetTranslation(pos)
	return m
}

// clampToBox stops the stylus at the mechanical workspace limits.
func clampToBox(x dynamo.State, lo, hi geom.Vec3) {
	for i := 0; i < 3; i++ {
		if x[i] < lo.At(i) {
			x[i] = lo.At(i)
			if x[3+i] < 0 {
				x[3+i] = 0
			}
		} else if x[i] > hi.At(i) {
			x[i] = hi.At(i)
			if x[3+i] > 0 {
				x[3+i] = 0
			}
		}
	}
}
