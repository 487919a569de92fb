package experiment

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/models"
	"github.com/san-kum/bifsim/internal/storage"
)

// Experiment is one continuation run described by a config.
type Experiment struct {
	cfg   *config.Config
	model models.Model
	sys   dynamo.System
	x0    dynamo.State
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg.Clone()}
}

// Setup builds the model from reg with the configured overrides, sets the
// continuation parameter to its start value and binds it.
func (e *Experiment) Setup(reg *models.Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	m, err := reg.Configure(e.cfg.Model, e.cfg.ModelParams)
	if err != nil {
		return err
	}
	if err := m.SetParam(e.cfg.Parameter, e.cfg.ParStart); err != nil {
		return fmt.Errorf("model %s: %w", m.Name(), err)
	}
	sys, err := models.Bind(m, e.cfg.Parameter)
	if err != nil {
		return err
	}

	x0 := m.DefaultState()
	if len(e.cfg.InitState) > 0 {
		if len(e.cfg.InitState) != m.Dim() {
			return fmt.Errorf("init_state has %d components, model %s has %d: %w",
				len(e.cfg.InitState), m.Name(), m.Dim(), dynamo.ErrDimensionMismatch)
		}
		x0 = dynamo.State(slices.Clone(e.cfg.InitState))
	}

	e.model, e.sys, e.x0 = m, sys, x0
	return nil
}

// Result is a finished run. Err is set when the branch is partial.
type Result struct {
	Config      *config.Config
	Model       string
	Vars        []string
	ModelParams map[string]float64
	Branch      *cont.Branch
	Err         error
}

// Metadata describes the result for the run store.
func (r *Result) Metadata() storage.RunMetadata {
	meta := storage.RunMetadata{
		Model:       r.Model,
		Method:      r.Config.Method,
		Vars:        r.Vars,
		ModelParams: r.ModelParams,
		Params:      storage.NewParamsRecord(r.Config.Params()),
	}
	if r.Err != nil {
		meta.Error = r.Err.Error()
	}
	return meta
}

// Run traces the branch with the configured method. A run that stops early
// still returns its partial branch, with the cause in both the returned error
// and Result.Err.
func (e *Experiment) Run(ctx context.Context, opts ...cont.Option) (*Result, error) {
	if e.sys == nil {
		return nil, errors.New("experiment not setup")
	}

	opts = append([]cont.Option{cont.WithContext(ctx)}, opts...)
	params := e.cfg.Params()

	var (
		b   *cont.Branch
		err error
	)
	switch e.cfg.Method {
	case config.MethodNatural:
		b, err = cont.Natural(e.sys, e.x0, params, opts...)
	default:
		b, err = cont.Arclength(e.sys, e.x0, params, opts...)
	}
	if b == nil {
		return nil, err
	}
	return e.result(b, err), err
}

// Switch starts a new branch at the bifurcation point bp of an earlier run
// of this experiment.
func (e *Experiment) Switch(ctx context.Context, bp cont.BifurcationPoint, perturbation float64, opts ...cont.Option) (*Result, error) {
	if e.sys == nil {
		return nil, errors.New("experiment not setup")
	}

	opts = append([]cont.Option{cont.WithContext(ctx)}, opts...)
	b, err := cont.SwitchBranch(e.sys, bp, perturbation, e.cfg.Params(), opts...)
	if b == nil {
		return nil, err
	}
	res := e.result(b, err)
	res.Config = e.cfg.Clone()
	res.Config.Method = config.MethodArclength
	if pt, ok := first(b); ok {
		res.Config.ParStart = pt.Parameter
	}
	return res, err
}

// Equilibria searches for equilibria at parameter value p from the given
// guesses, or from the starting state when there are none.
func (e *Experiment) Equilibria(p float64, guesses []dynamo.State, opts ...cont.Option) ([]cont.Equilibrium, error) {
	if e.sys == nil {
		return nil, errors.New("experiment not setup")
	}
	if len(guesses) == 0 {
		guesses = []dynamo.State{e.x0}
	}
	return cont.FindEquilibria(e.sys, p, guesses, e.cfg.Params(), opts...)
}

func (e *Experiment) result(b *cont.Branch, err error) *Result {
	return &Result{
		Config:      e.cfg.Clone(),
		Model:       e.model.Name(),
		Vars:        e.model.Vars(),
		ModelParams: e.model.GetParams(),
		Branch:      b,
		Err:         err,
	}
}

func first(b *cont.Branch) (cont.SolutionPoint, bool) {
	if b.Len() == 0 {
		return cont.SolutionPoint{}, false
	}
	return b.Points[0], true
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

func (e *Experiment) Model() models.Model { return e.model }

func (e *Experiment) System() dynamo.System { return e.sys }

func (e *Experiment) InitialState() dynamo.State { return e.x0.Clone() }

// FromRun rebuilds the config of a stored run.
func FromRun(meta *storage.RunMetadata) *config.Config {
	p := meta.Params.Params()
	cfg := config.DefaultConfig()
	cfg.Model = meta.Model
	cfg.Method = meta.Method
	cfg.Parameter = p.Parameter
	cfg.ParStart, cfg.ParEnd = p.Start, p.End
	cfg.Ds, cfg.DsMin, cfg.DsMax = p.Ds, p.DsMin, p.DsMax
	cfg.MaxSteps = p.MaxSteps
	cfg.NewtonTol, cfg.NewtonMaxIter = p.NewtonTol, p.NewtonMaxIter
	cfg.DetectBifurcations = p.DetectBifurcations
	cfg.SwitchPerturbation = p.SwitchPerturbation
	cfg.ModelParams = meta.ModelParams
	return cfg
}
