package cont

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/linalg"
	"github.com/san-kum/bifsim/internal/newton"
)

type Option func(*options)

type options struct {
	ctx      context.Context
	logger   *zap.Logger
	name     string
	observer func(SolutionPoint)
}

// WithLogger sets the logger used for step and bifurcation events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithContext makes the run stop with ctx.Err() once ctx is done. The check
// happens between steps.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithName overrides the branch name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithObserver registers fn to be called with every accepted point.
func WithObserver(fn func(SolutionPoint)) Option {
	return func(o *options) { o.observer = fn }
}

// runner holds the per-call state of one continuation run.
type runner struct {
	sys    dynamo.System
	params Params
	log    *zap.Logger
	opts   options
	branch *Branch
}

func newRunner(sys dynamo.System, x0 dynamo.State, params Params, defaultName string, opts []Option) (*runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != sys.Dim() {
		return nil, fmt.Errorf("initial state has %d components, system has %d: %w", len(x0), sys.Dim(), dynamo.ErrDimensionMismatch)
	}
	if !x0.IsValid() {
		return nil, dynamo.ErrInvalidState
	}

	o := options{ctx: context.Background(), logger: zap.NewNop(), name: defaultName}
	for _, opt := range opts {
		opt(&o)
	}

	return &runner{
		sys:    sys,
		params: params,
		log:    o.logger.With(zap.String("branch", o.name), zap.String("parameter", params.Parameter)),
		opts:   o,
		branch: newBranch(o.name),
	}, nil
}

func (r *runner) solver() newton.Solver {
	return newton.Solver{Tol: r.params.NewtonTol, MaxIter: r.params.NewtonMaxIter}
}

func (r *runner) count(res newton.Result) {
	r.branch.Stats.NewtonIterations += res.Iterations
	r.branch.Stats.JacobianEvaluations += res.Iterations
}

// equilibrium solves F(x, p) = 0 for x at fixed p.
func (r *runner) equilibrium(x0 dynamo.State, p float64) (newton.Result, error) {
	res, err := r.solver().Solve(newton.Problem{
		Residual: func(x []float64) []float64 { return r.sys.RHS(x, p) },
		Jacobian: func(x []float64) linalg.Matrix { return Jacobian(r.sys, x, p) },
	}, x0)
	r.count(res)
	return res, err
}

// point builds the classified SolutionPoint for an accepted equilibrium.
func (r *runner) point(x dynamo.State, p, residual float64) SolutionPoint {
	st := Classify(Jacobian(r.sys, x, p))
	return SolutionPoint{
		Parameter:   p,
		State:       x.Clone(),
		Stable:      st.Stable,
		Eigenvalues: st.Eigenvalues,
		Type:        ClassifyPoint(st.Eigenvalues),
		Residual:    residual,
	}
}

// accept tags pt against the previous point when detection is on and
// appends it.
func (r *runner) accept(pt SolutionPoint) {
	b := r.branch
	if prev, ok := b.Last(); ok && r.params.DetectBifurcations {
		if typ, crossing := detect(pt.Eigenvalues, prev.Eigenvalues); typ != Regular {
			pt.Bifurcation = typ
			bp := BifurcationPoint{
				Type:        typ,
				Parameter:   pt.Parameter,
				State:       pt.State.Clone(),
				Eigenvalues: CriticalEigenvalues(pt.Eigenvalues),
				Index:       len(b.Points),
			}
			if pt.Tangent != nil {
				bp.Tangent = append([]float64(nil), pt.Tangent...)
			}
			if typ == Hopf && imag(crossing) != 0 {
				period := 2 * math.Pi / math.Abs(imag(crossing))
				bp.Period = &period
			}
			b.Bifurcations = append(b.Bifurcations, bp)
			b.Stats.Bifurcations++
			r.log.Info("bifurcation detected",
				zap.Stringer("type", typ),
				zap.Float64("p", pt.Parameter),
				zap.Int("index", bp.Index))
		}
	}

	b.Points = append(b.Points, pt)
	b.Stats.Steps++
	r.log.Debug("point accepted",
		zap.Int("step", len(b.Points)-1),
		zap.Float64("p", pt.Parameter),
		zap.Float64("norm", pt.State.Norm()),
		zap.Bool("stable", pt.Stable))
	if r.opts.observer != nil {
		r.opts.observer(pt)
	}
}

func (r *runner) fail(x dynamo.State, p float64, err error) error {
	r.log.Warn("continuation stopped", zap.Float64("p", p), zap.Error(err))
	return &dynamo.ContinuationError{
		Step:      len(r.branch.Points),
		Parameter: p,
		State:     x.Clone(),
		Wrapped:   err,
	}
}

func (r *runner) done(reason string) {
	last, _ := r.branch.Last()
	r.log.Info("continuation finished",
		zap.String("reason", reason),
		zap.Int("points", len(r.branch.Points)),
		zap.Int("bifurcations", len(r.branch.Bifurcations)),
		zap.Float64("p", last.Parameter))
}
