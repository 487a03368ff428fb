// Package config loads and saves run configuration as YAML.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTolAbs   = 1e-8
	DefaultTolRel   = 1e-8
	DefaultDuration = 10.0
	DefaultTheta    = 0.5
)

type Config struct {
	Model    string  `yaml:"model"`
	TolAbs   float64 `yaml:"tol_abs"`
	TolRel   float64 `yaml:"tol_rel"`
	Dt       float64 `yaml:"dt"` // initial step size; 0 lets the stepper estimate
	Duration float64 `yaml:"duration"`
	// MaxAttempts caps retries per step; 0 keeps the stepper default.
	MaxAttempts int             `yaml:"max_attempts"`
	InitState   InitStateConfig `yaml:"init_state"`
}

type InitStateConfig struct {
	Theta float64 `yaml:"theta"`
	Omega float64 `yaml:"omega"`
	Pos   float64 `yaml:"pos"`
	Vel   float64 `yaml:"vel"`
	Wx    float64 `yaml:"wx"`
	Wy    float64 `yaml:"wy"`
	Wz    float64 `yaml:"wz"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    "pendulum",
		TolAbs:   DefaultTolAbs,
		TolRel:   DefaultTolRel,
		Duration: DefaultDuration,
		InitState: InitStateConfig{
			Theta: DefaultTheta,
			Wy:    2.0,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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
