package dynamo

import (
	"math"

	"github.com/san-kum/phantomgo/internal/geom"
)

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

// System writes dX/dt into dx, which has the same length as x.
type System interface {
	Derive(x State, u Control, t float64, dx State)
	StateDim() int
	ControlDim() int
}

// Integrator advances x in place from t to t+dt.
type Integrator interface {
	Name() string
	Step(dyn System, x State, u Control, t, dt float64)
}

// Observation is what one servo tick reports to a [Metric].
type Observation struct {
	Time        float64
	Period      float64
	Force       geom.Vec3
	Clamped     bool
	Penetration float64
}

type Metric interface {
	Name() string
	Observe(o Observation)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
