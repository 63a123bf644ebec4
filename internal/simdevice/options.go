package simdevice

import (
	"time"

	"github.com/san-kum/phantomgo/internal/geom"
	"go.uber.org/zap"
)

// Motion scripts where the simulated hand wants the stylus to be.
type Motion string

const (
	MotionHold   Motion = "hold"
	MotionSweep  Motion = "sweep"
	MotionCircle Motion = "circle"
)

type HandOptions struct {
	Kp    float64 // N/mm
	Ki    float64
	Kd    float64 // N·s/mm
	Limit float64 // N
}

type Options struct {
	Name          string
	Model         string
	Serial        string
	Vendor        string
	DriverVersion string

	WorkspaceMin geom.Vec3
	WorkspaceMax geom.Vec3
	UsableMin    geom.Vec3
	UsableMax    geom.Vec3
	// TabletopOffset is the distance from the origin down to the table, mm.
	TabletopOffset float32

	NominalMaxForce float64
	Rates           []uint32
	Rate            uint32

	// Unavailable makes InitDevice fail as if nothing were plugged in.
	Unavailable bool
	// ManualClock disables the ticker; ticks happen only through Step.
	ManualClock bool

	Mass       float64 // kg
	Friction   float64 // N·s/mm
	Integrator string
	Hand       HandOptions

	Motion    Motion
	Center    geom.Vec3
	Amplitude float64 // mm
	Period    time.Duration

	Logger *zap.Logger
}

// DefaultOptions describes a desktop-class stylus.
func DefaultOptions() Options {
	return Options{
		Name:          "Default Device",
		Model:         "PHANToM Omni (simulated)",
		Serial:        "SIM-00001",
		Vendor:        "phantomgo",
		DriverVersion: "3.4.0-sim",

		WorkspaceMin:   geom.V(-210, -110, -85),
		WorkspaceMax:   geom.V(210, 205, 130),
		UsableMin:      geom.V(-80, -60, -35),
		UsableMax:      geom.V(80, 60, 35),
		TabletopOffset: -88,

		NominalMaxForce: 3.3,
		Rates:           []uint32{500, 1000},
		Rate:            1000,

		Mass:       0.045,
		Friction:   0.0005,
		Integrator: "rk4",
		Hand: HandOptions{
			Kp:    0.05,
			Kd:    0.004,
			Limit: 2.5,
		},

		Motion:    MotionHold,
		Amplitude: 60,
		Period:    4 * time.Second,
	}
}
