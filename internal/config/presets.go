package config

import (
	"maps"
	"slices"
)

func preset(model, method, param string, start, end, ds, dsMax float64, steps int) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	cfg.Method = method
	cfg.Parameter = param
	cfg.ParStart, cfg.ParEnd = start, end
	cfg.Ds, cfg.DsMax = ds, dsMax
	cfg.MaxSteps = steps
	return cfg
}

func withState(cfg *Config, x ...float64) *Config {
	cfg.InitState = x
	return cfg
}

func withParams(cfg *Config, p map[string]float64) *Config {
	cfg.ModelParams = p
	return cfg
}

var Presets = map[string]map[string]*Config{
	"fold": {
		"turning": withState(preset("fold", MethodArclength, "mu", 1, -1, 0.05, 0.1, 60), 1),
		"natural": withState(preset("fold", MethodNatural, "mu", 0, 2, 0.1, 0.1, 30), 0.01),
	},
	"transcritical": {
		"exchange": preset("transcritical", MethodArclength, "mu", -1, 1, 0.1, 0.2, 100),
	},
	"pitchfork": {
		"trivial": preset("pitchfork", MethodNatural, "mu", -1, 1, 0.1, 0.1, 50),
	},
	"hopf": {
		"onset": preset("hopf", MethodNatural, "mu", -0.5, 0.5, 0.1, 0.1, 50),
	},
	"lorenz": {
		"hopf":  preset("lorenz", MethodArclength, "rho", 2, 30, 0.5, 1, 200),
		"sweep": preset("lorenz", MethodNatural, "rho", 2, 30, 0.5, 0.5, 100),
	},
	"fitzhugh": {
		"excitability": preset("fitzhugh", MethodArclength, "I", 0, 1.5, 0.05, 0.1, 200),
	},
	"brusselator": {
		"hopf": preset("brusselator", MethodNatural, "b", 1, 3, 0.05, 0.1, 100),
	},
	"pendulum": {
		"torque": withParams(preset("pendulum", MethodArclength, "torque", 0, 15, 0.2, 0.5, 120), map[string]float64{"damping": 3}),
	},
	"duffing": {
		"stiffness": preset("duffing", MethodNatural, "alpha", 1, -1, 0.1, 0.1, 50),
	},
	"vanderpol": {
		"onset": preset("vanderpol", MethodNatural, "mu", -1, 1, 0.1, 0.1, 50),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(modelPresets))
}
