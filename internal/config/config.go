package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/san-kum/phantomgo/internal/coords"
	"github.com/san-kum/phantomgo/internal/forcefield"
	"github.com/san-kum/phantomgo/internal/geom"
	"github.com/san-kum/phantomgo/internal/hd"
	"github.com/san-kum/phantomgo/internal/integrators"
	"github.com/san-kum/phantomgo/internal/logging"
	"github.com/san-kum/phantomgo/internal/pen"
	"github.com/san-kum/phantomgo/internal/simdevice"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRate      = 1000
	DefaultDuration  = 10.0
	DefaultMaxForce  = 3.0
	DefaultFrameRate = 60
	DefaultPreset    = "orb"
)

const (
	BackendSim         = "sim"
	BackendOpenHaptics = "openhaptics"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Sim      SimConfig      `yaml:"sim"`
	Pen      PenConfig      `yaml:"pen"`
	Adapter  AdapterConfig  `yaml:"adapter"`
	Scene    SceneConfig    `yaml:"scene"`
	Log      logging.Config `yaml:"log"`
	Duration float64        `yaml:"duration"`
	// FrameRate is the outer frame rate of the monitor, in Hz.
	FrameRate int `yaml:"frame_rate"`
}

type DeviceConfig struct {
	Backend string `yaml:"backend"`
	// Name selects a configured device; empty means the default one.
	Name string `yaml:"name"`
	Rate uint32 `yaml:"rate"`
}

type SimConfig struct {
	Integrator string     `yaml:"integrator"`
	Mass       float64    `yaml:"mass"`
	Friction   float64    `yaml:"friction"`
	Motion     string     `yaml:"motion"`
	Amplitude  float64    `yaml:"amplitude"`
	Period     float64    `yaml:"period"`
	Hand       HandConfig `yaml:"hand"`
	Center     [3]float64 `yaml:"center"`
}

type HandConfig struct {
	Kp    float64 `yaml:"kp"`
	Ki    float64 `yaml:"ki"`
	Kd    float64 `yaml:"kd"`
	Limit float64 `yaml:"limit"`
}

type PenConfig struct {
	MaxForce float64 `yaml:"max_force"`
	Priority uint16  `yaml:"priority"`
}

type AdapterConfig struct {
	Flip      [3]float64 `yaml:"flip"`
	Scale     float64    `yaml:"scale"`
	TipOffset [3]float64 `yaml:"tip_offset"`
}

type SceneConfig struct {
	Damping   bool             `yaml:"damping"`
	Spheres   []SphereConfig   `yaml:"spheres,omitempty"`
	LogFields []LogFieldConfig `yaml:"log_fields,omitempty"`
}

type SphereConfig struct {
	Name       string     `yaml:"name"`
	Center     [3]float64 `yaml:"center"`
	Radius     float64    `yaml:"radius"`
	Stiffness  float64    `yaml:"stiffness"`
	Damping    float64    `yaml:"damping"`
	ForceLimit float64    `yaml:"force_limit"`
}

type LogFieldConfig struct {
	Name     string     `yaml:"name"`
	Target   [3]float64 `yaml:"target"`
	Gain     float64    `yaml:"gain"`
	Radius   float64    `yaml:"radius"`
	MaxForce float64    `yaml:"max_force"`
	DeadZone float64    `yaml:"dead_zone"`
}

func DefaultConfig() *Config {
	sim := simdevice.DefaultOptions()
	ad := coords.Default()
	cfg := &Config{
		Device: DeviceConfig{Backend: BackendSim, Rate: DefaultRate},
		Sim: SimConfig{
			Integrator: sim.Integrator,
			Mass:       sim.Mass,
			Friction:   sim.Friction,
			Motion:     string(sim.Motion),
			Amplitude:  sim.Amplitude,
			Period:     sim.Period.Seconds(),
			Hand: HandConfig{
				Kp:    sim.Hand.Kp,
				Ki:    sim.Hand.Ki,
				Kd:    sim.Hand.Kd,
				Limit: sim.Hand.Limit,
			},
		},
		Pen: PenConfig{MaxForce: DefaultMaxForce, Priority: uint16(hd.DefaultPriority)},
		Adapter: AdapterConfig{
			Flip:      ad.Flip.Array(),
			Scale:     ad.Scale,
			TipOffset: ad.TipOffset.Array(),
		},
		Log:       logging.DefaultConfig(),
		Duration:  DefaultDuration,
		FrameRate: DefaultFrameRate,
	}
	Presets[DefaultPreset].apply(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

// Validate reports every problem it finds, not just the first.
func (c *Config) Validate() error {
	var err error
	switch c.Device.Backend {
	case BackendSim, BackendOpenHaptics:
	default:
		err = multierr.Append(err, invalid("unknown backend %q", c.Device.Backend))
	}
	if c.Device.Rate == 0 {
		err = multierr.Append(err, invalid("device rate must be positive"))
	}
	if c.Duration <= 0 {
		err = multierr.Append(err, invalid("duration must be positive"))
	}
	if c.FrameRate <= 0 {
		err = multierr.Append(err, invalid("frame rate must be positive"))
	}
	if c.Pen.MaxForce <= 0 {
		err = multierr.Append(err, invalid("pen max force must be positive"))
	}
	if c.Sim.Mass <= 0 {
		err = multierr.Append(err, invalid("sim mass must be positive"))
	}
	if !slices.Contains(integrators.Names(), c.Sim.Integrator) {
		err = multierr.Append(err, invalid("unknown integrator %q", c.Sim.Integrator))
	}
	switch simdevice.Motion(c.Sim.Motion) {
	case simdevice.MotionHold, simdevice.MotionSweep, simdevice.MotionCircle:
	default:
		err = multierr.Append(err, invalid("unknown motion %q", c.Sim.Motion))
	}
	err = multierr.Append(err, c.Adapter.Build().Validate())
	err = multierr.Append(err, c.Log.Validate())

	names := make(map[string]bool)
	for _, f := range c.Scene.fields() {
		if names[f.name] {
			err = multierr.Append(err, invalid("duplicate field %q", f.name))
		}
		names[f.name] = true
		if v, ok := f.field.(interface{ Validate() error }); ok {
			if verr := v.Validate(); verr != nil {
				err = multierr.Append(err, fmt.Errorf("field %q: %w", f.name, verr))
			}
		}
	}
	return err
}

func (a AdapterConfig) Build() coords.Adapter {
	return coords.Adapter{
		Flip:      geom.FromArray(a.Flip),
		Scale:     a.Scale,
		TipOffset: geom.FromArray(a.TipOffset),
	}
}

type namedField struct {
	name  string
	field forcefield.Field
}

func (s SceneConfig) fields() []namedField {
	out := make([]namedField, 0, len(s.Spheres)+len(s.LogFields))
	for i, sc := range s.Spheres {
		name := sc.Name
		if name == "" {
			name = fmt.Sprintf("sphere%d", i)
		}
		out = append(out, namedField{name, forcefield.RigidSphere{
			Center:     geom.FromArray(sc.Center),
			Radius:     sc.Radius,
			Stiffness:  sc.Stiffness,
			Damping:    sc.Damping,
			ForceLimit: sc.ForceLimit,
		}})
	}
	for i, lc := range s.LogFields {
		name := lc.Name
		if name == "" {
			name = fmt.Sprintf("field%d", i)
		}
		out = append(out, namedField{name, forcefield.LogField{
			Target:   geom.FromArray(lc.Target),
			Gain:     lc.Gain,
			Radius:   lc.Radius,
			MaxForce: lc.MaxForce,
			DeadZone: lc.DeadZone,
		}})
	}
	return out
}

// BuildScene returns a scene holding the configured fields, spheres first.
func (s SceneConfig) BuildScene() (*forcefield.Scene, error) {
	scene := forcefield.NewScene()
	for _, f := range s.fields() {
		if err := scene.Add(f.name, f.field); err != nil {
			return nil, err
		}
	}
	scene.SetDamping(s.Damping)
	return scene, nil
}

func (c *Config) SimOptions() simdevice.Options {
	opts := simdevice.DefaultOptions()
	if c.Device.Name != "" {
		opts.Name = c.Device.Name
	}
	opts.Rate = c.Device.Rate
	opts.Integrator = c.Sim.Integrator
	opts.Mass = c.Sim.Mass
	opts.Friction = c.Sim.Friction
	opts.Motion = simdevice.Motion(c.Sim.Motion)
	opts.Amplitude = c.Sim.Amplitude
	opts.Period = time.Duration(c.Sim.Period * float64(time.Second))
	opts.Center = geom.FromArray(c.Sim.Center)
	opts.Hand = simdevice.HandOptions{
		Kp:    c.Sim.Hand.Kp,
		Ki:    c.Sim.Hand.Ki,
		Kd:    c.Sim.Hand.Kd,
		Limit: c.Sim.Hand.Limit,
	}
	return opts
}

func (c *Config) PenOptions() pen.Options {
	opts := pen.DefaultOptions()
	opts.MaxForce = c.Pen.MaxForce
	opts.Priority = hd.Priority(c.Pen.Priority)
	opts.Rate = c.Device.Rate
	return opts
}
