package config

import "sort"

var Presets = map[string]*Config{
	"quick": {
		Shift: 8, Dt: DefaultDt, Iters: DefaultIters,
		Softening: DefaultSoftening, Seed: DefaultSeed, Backend: "auto",
	},
	"standard": {
		Shift: DefaultShift, Dt: DefaultDt, Iters: DefaultIters,
		Softening: DefaultSoftening, Seed: DefaultSeed, Backend: "auto",
	},
	"stress": {
		Shift: 14, Dt: DefaultDt, Iters: DefaultIters,
		Softening: DefaultSoftening, Seed: DefaultSeed, Backend: "auto",
	},
	"fast-math": {
		Shift: DefaultShift, Dt: DefaultDt, Iters: DefaultIters,
		Softening: DefaultSoftening, Seed: DefaultSeed, Backend: "auto",
		FastInvSqrt: true,
	},
	"serial": {
		Shift: 10, Dt: DefaultDt, Iters: DefaultIters,
		Softening: DefaultSoftening, Seed: DefaultSeed, Backend: "serial",
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
