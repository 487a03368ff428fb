package config

import "sort"

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Model: "pendulum", TolAbs: 1e-8, TolRel: 1e-8, Duration: 20.0,
			InitState: InitStateConfig{Theta: 0.2},
		},
		"large": {
			Model: "pendulum", TolAbs: 1e-8, TolRel: 1e-8, Duration: 20.0,
			InitState: InitStateConfig{Theta: 2.5},
		},
		"spinning": {
			Model: "pendulum", TolAbs: 1e-8, TolRel: 1e-8, Duration: 30.0,
			InitState: InitStateConfig{Theta: 0.1, Omega: 8.0},
		},
	},
	"springmass": {
		"bounce": {
			Model: "springmass", TolAbs: 1e-8, TolRel: 1e-8, Duration: 20.0,
			InitState: InitStateConfig{Pos: 2.0},
		},
		"fast": {
			Model: "springmass", TolAbs: 1e-10, TolRel: 1e-10, Duration: 10.0,
			InitState: InitStateConfig{Pos: 1.0, Vel: 5.0},
		},
	},
	"rigidbody": {
		"steady": {
			Model: "rigidbody", TolAbs: 1e-9, TolRel: 1e-9, Duration: 10.0,
			InitState: InitStateConfig{Wx: 1.5},
		},
		"tumble": {
			Model: "rigidbody", TolAbs: 1e-10, TolRel: 1e-10, Duration: 30.0,
			InitState: InitStateConfig{Wx: 0.05, Wy: 2.0, Wz: 0.05},
		},
	},
}

func GetPreset(model, name string) *Config {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	return group[name]
}

func ListPresets(model string) []string {
	group, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
