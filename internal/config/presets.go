package config

import (
	"slices"
	"sort"

	"github.com/san-kum/phantomgo/internal/simdevice"
)

// Preset is a ready-made scene with a matching hand motion.
type Preset struct {
	Description string
	Motion      simdevice.Motion
	Scene       SceneConfig
}

var Presets = map[string]Preset{
	"orb": {
		Description: "one rigid sphere at the workspace center",
		Motion:      simdevice.MotionSweep,
		Scene: SceneConfig{
			Damping: true,
			Spheres: []SphereConfig{
				{Name: "orb", Radius: 30, Stiffness: 1.0, ForceLimit: 3.0},
			},
		},
	},
	"cluster": {
		Description: "three overlapping damped spheres",
		Motion:      simdevice.MotionCircle,
		Scene: SceneConfig{
			Damping: true,
			Spheres: []SphereConfig{
				{Name: "left", Center: [3]float64{-35, 0, 0}, Radius: 25, Stiffness: 0.6, Damping: 0.002, ForceLimit: 2.0},
				{Name: "right", Center: [3]float64{35, 0, 0}, Radius: 25, Stiffness: 0.6, Damping: 0.002, ForceLimit: 2.0},
				{Name: "top", Center: [3]float64{0, 45, 0}, Radius: 20, Stiffness: 1.2, Damping: 0.001, ForceLimit: 3.0},
			},
		},
	},
	"pudding": {
		Description: "soft repulsion from a point, rising as the tip closes in",
		Motion:      simdevice.MotionSweep,
		Scene: SceneConfig{
			LogFields: []LogFieldConfig{
				{Name: "pudding", Gain: 0.5, Radius: 50, MaxForce: 0.8, DeadZone: 0.5},
			},
		},
	},
}

// GetPreset returns the default config with the named scene, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg
}

func (p Preset) apply(cfg *Config) {
	cfg.Scene = SceneConfig{
		Damping:   p.Scene.Damping,
		Spheres:   slices.Clone(p.Scene.Spheres),
		LogFields: slices.Clone(p.Scene.LogFields),
	}
	cfg.Sim.Motion = string(p.Motion)
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
