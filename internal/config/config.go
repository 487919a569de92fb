package config

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
)

const (
	MethodNatural   = "natural"
	MethodArclength = "arclength"
)

const (
	DefaultModel     = "fold"
	DefaultMethod    = MethodArclength
	DefaultParameter = "mu"
	DefaultParStart  = 1.0
	DefaultParEnd    = -1.0
)

type Config struct {
	Model     string  `yaml:"model"`
	Method    string  `yaml:"method"`
	Parameter string  `yaml:"parameter"`
	ParStart  float64 `yaml:"par_start"`
	ParEnd    float64 `yaml:"par_end"`

	Ds    float64 `yaml:"ds"`
	DsMin float64 `yaml:"ds_min"`
	DsMax float64 `yaml:"ds_max"`

	MaxSteps      int     `yaml:"max_steps"`
	NewtonTol     float64 `yaml:"newton_tol"`
	NewtonMaxIter int     `yaml:"newton_max_iter"`

	DetectBifurcations bool    `yaml:"detect_bifurcations"`
	SwitchPerturbation float64 `yaml:"switch_perturbation"`

	// InitState overrides the model's default starting state.
	InitState   []float64          `yaml:"init_state,omitempty"`
	ModelParams map[string]float64 `yaml:"model_params,omitempty"`
}

func DefaultConfig() *Config {
	p := cont.DefaultParams()
	return &Config{
		Model:              DefaultModel,
		Method:             DefaultMethod,
		Parameter:          DefaultParameter,
		ParStart:           DefaultParStart,
		ParEnd:             DefaultParEnd,
		Ds:                 p.Ds,
		DsMin:              p.DsMin,
		DsMax:              p.DsMax,
		MaxSteps:           p.MaxSteps,
		NewtonTol:          p.NewtonTol,
		NewtonMaxIter:      p.NewtonMaxIter,
		DetectBifurcations: p.DetectBifurcations,
		SwitchPerturbation: p.SwitchPerturbation,
	}
}

// Load reads a YAML config. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Params converts the run settings into continuation parameters.
func (c *Config) Params() cont.Params {
	return cont.Params{
		Parameter:          c.Parameter,
		Start:              c.ParStart,
		End:                c.ParEnd,
		Ds:                 c.Ds,
		DsMin:              c.DsMin,
		DsMax:              c.DsMax,
		MaxSteps:           c.MaxSteps,
		NewtonTol:          c.NewtonTol,
		NewtonMaxIter:      c.NewtonMaxIter,
		DetectBifurcations: c.DetectBifurcations,
		SwitchPerturbation: c.SwitchPerturbation,
	}
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required: %w", dynamo.ErrInvalidParameter)
	}
	if c.Parameter == "" {
		return fmt.Errorf("continuation parameter is required: %w", dynamo.ErrInvalidParameter)
	}
	switch c.Method {
	case MethodNatural, MethodArclength:
	default:
		return fmt.Errorf("unknown method %q: %w", c.Method, dynamo.ErrInvalidParameter)
	}
	return c.Params().Validate()
}

func (c *Config) Clone() *Config {
	out := *c
	if c.InitState != nil {
		out.InitState = append([]float64(nil), c.InitState...)
	}
	out.ModelParams = maps.Clone(c.ModelParams)
	return &out
}
