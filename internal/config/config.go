package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultShift     = 12 // 2^12 = 4096 bodies
	DefaultDt        = 0.01
	DefaultIters     = 10
	DefaultSoftening = 1e-9
	DefaultSeed      = 42
)

// Config is the full run-parameter surface. Body count is expressed as
// a power-of-two exponent.
type Config struct {
	Shift       int     `yaml:"shift"`
	Dt          float32 `yaml:"dt"`
	Iters       int     `yaml:"iters"`
	Softening   float32 `yaml:"softening"`
	Seed        int64   `yaml:"seed"`
	Salt        int64   `yaml:"salt"`
	Backend     string  `yaml:"backend"`
	GridI       int     `yaml:"grid_i"` // 0 = auto
	GridJ       int     `yaml:"grid_j"` // 0 = auto
	FastInvSqrt bool    `yaml:"fast_inv_sqrt"`
	StopOnError bool    `yaml:"stop_on_error"`
	Diagnostics bool    `yaml:"diagnostics"`
}

func DefaultConfig() *Config {
	return &Config{
		Shift:     DefaultShift,
		Dt:        DefaultDt,
		Iters:     DefaultIters,
		Softening: DefaultSoftening,
		Seed:      DefaultSeed,
		Backend:   "auto",
	}
}

// Bodies derives the body count from the exponent.
func (c *Config) Bodies() int {
	if c.Shift < 0 {
		return 0
	}
	return 1 << c.Shift
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
