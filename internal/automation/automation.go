package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/experiment"
	"github.com/san-kum/bifsim/internal/models"
)

// Scenario is a scripted sequence of continuation runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single run in a scenario. The run config starts from Preset
// ("model/name") or the defaults, and Config overrides any of its fields.
// A step with SwitchFrom instead continues a bifurcation of an earlier step
// with that step's config, still subject to Config.
type Step struct {
	Name         string     `yaml:"name"`
	Preset       string     `yaml:"preset"`
	Config       yaml.Node  `yaml:"config"`
	SwitchFrom   *SwitchRef `yaml:"switch_from"`
	Perturbation float64    `yaml:"perturbation"`
}

// SwitchRef names bifurcation Index of the branch computed by step Step,
// both zero-based.
type SwitchRef struct {
	Step  int `yaml:"step"`
	Index int `yaml:"index"`
}

// StepResult is the outcome of one step. Err is set when the branch is
// partial; the scenario keeps going in that case.
type StepResult struct {
	Name   string
	Result *experiment.Result
	Err    error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// resolve builds the run config of step on top of base.
func (s *Step) resolve(base *config.Config) (*config.Config, error) {
	cfg := base
	if s.Preset != "" {
		model, name, ok := strings.Cut(s.Preset, "/")
		if !ok || model == "" || name == "" {
			return nil, fmt.Errorf("preset %q: want model/name", s.Preset)
		}
		if cfg = config.GetPreset(model, name); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q: %w", s.Preset, dynamo.ErrInvalidParameter)
		}
	}
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return cfg, nil
}

// RunScenario executes the steps in order. Setup errors and bad switch
// references abort the scenario and return the results so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *models.Registry, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))
	exps := make([]*experiment.Experiment, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		log := logger.With(zap.String("scenario", scenario.Name), zap.String("step", name))
		log.Info("running step", zap.Int("n", i+1), zap.Int("of", len(scenario.Steps)))

		var (
			exp *experiment.Experiment
			bp  *cont.BifurcationPoint
		)
		if ref := step.SwitchFrom; ref != nil {
			if ref.Step < 0 || ref.Step >= i {
				return results, fmt.Errorf("step %d: switch_from step %d is not an earlier step", i+1, ref.Step)
			}
			parent := results[ref.Step].Result
			if parent == nil {
				return results, fmt.Errorf("step %d: step %d produced no branch", i+1, ref.Step)
			}
			p, err := parent.Branch.Bifurcation(ref.Index)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			bp = &p

			cfg, err := step.resolve(exps[ref.Step].Config())
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			exp = experiment.New(cfg)
		} else {
			cfg, err := step.resolve(config.DefaultConfig())
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			exp = experiment.New(cfg)
		}

		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		var (
			res *experiment.Result
			err error
		)
		opts := []cont.Option{cont.WithLogger(log), cont.WithName(name)}
		if bp != nil {
			res, err = exp.Switch(ctx, *bp, step.Perturbation, opts...)
		} else {
			res, err = exp.Run(ctx, opts...)
		}
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if res == nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err != nil {
			log.Warn("step stopped early", zap.Error(err))
		}

		results = append(results, StepResult{Name: name, Result: res, Err: err})
		exps = append(exps, exp)
	}

	return results, nil
}

// Sweep searches for equilibria on a grid of parameter values, each from
// random guesses scattered around a base state.
type Sweep struct {
	Model       string
	ModelParams map[string]float64
	ParamName   string
	ParamMin    float64
	ParamMax    float64
	NumSteps    int

	// BaseState defaults to the model's default state.
	BaseState []float64
	Spread    float64
	Guesses   int
	Seed      int64

	Workers int
}

type SweepResult struct {
	ParamValue float64
	Equilibria []cont.Equilibrium
}

// RunSweep executes the sweep. Guesses are drawn from [x-Spread, x+Spread]
// per component with a generator seeded by Seed, before any work starts, so
// the result does not depend on Workers. Parameter values are solved by up
// to Workers goroutines; zero means one. Each continuation call itself stays
// single-threaded.
func RunSweep(ctx context.Context, sweep *Sweep, registry *models.Registry, logger *zap.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d: %w", sweep.NumSteps, dynamo.ErrInvalidParameter)
	}
	if sweep.Guesses < 1 {
		return nil, fmt.Errorf("sweep needs at least 1 guess: %w", dynamo.ErrInvalidParameter)
	}

	cfg := config.DefaultConfig()
	cfg.Model = sweep.Model
	cfg.ModelParams = sweep.ModelParams
	cfg.Parameter = sweep.ParamName
	cfg.ParStart, cfg.ParEnd = sweep.ParamMin, sweep.ParamMax
	cfg.InitState = sweep.BaseState

	exp := experiment.New(cfg)
	if err := exp.Setup(registry); err != nil {
		return nil, err
	}
	base := exp.InitialState()

	rng := rand.New(rand.NewSource(sweep.Seed))
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	guesses := make([][]dynamo.State, sweep.NumSteps)
	for i := range guesses {
		gs := make([]dynamo.State, sweep.Guesses)
		gs[0] = base.Clone()
		for g := 1; g < len(gs); g++ {
			x := make(dynamo.State, len(base))
			for k, v := range base {
				x[k] = v + (rng.Float64()-0.5)*2*sweep.Spread
			}
			gs[g] = x
		}
		guesses[i] = gs
	}

	workers := max(sweep.Workers, 1)

	results := make([]SweepResult, sweep.NumSteps)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range results {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			eqs, err := exp.Equilibria(paramVal, guesses[i], cont.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
			}
			results[i] = SweepResult{ParamValue: paramVal, Equilibria: eqs}

			logger.Debug("sweep step",
				zap.Int("n", i+1),
				zap.String("param", sweep.ParamName),
				zap.Float64("value", paramVal),
				zap.Int("equilibria", len(eqs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// SweepStats counts the stable and unstable equilibria found by a sweep.
func SweepStats(results []SweepResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		for _, e := range r.Equilibria {
			if e.Stable {
				stableCount++
			} else {
				unstableCount++
			}
		}
	}
	return
}
