package cont

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/linalg"
)

func foldSystem() dynamo.System {
	return &dynamo.Func{N: 1, F: func(x dynamo.State, mu float64) dynamo.State {
		return dynamo.State{mu - x[0]*x[0]}
	}}
}

func transcriticalSystem() dynamo.System {
	return &dynamo.Func{N: 1, F: func(x dynamo.State, mu float64) dynamo.State {
		return dynamo.State{mu*x[0] - x[0]*x[0]}
	}}
}

func hopfSystem() dynamo.System {
	f := &dynamo.Func{
		N: 2,
		F: func(x dynamo.State, mu float64) dynamo.State {
			r2 := x[0]*x[0] + x[1]*x[1]
			return dynamo.State{mu*x[0] - x[1] - x[0]*r2, x[0] + mu*x[1] - x[1]*r2}
		},
		Jac: func(x dynamo.State, mu float64) [][]float64 {
			a, b := x[0], x[1]
			return [][]float64{
				{mu - 3*a*a - b*b, -1 - 2*a*b},
				{1 - 2*a*b, mu - a*a - 3*b*b},
			}
		},
	}
	return f.WithJacobians()
}

func lorenzSystem() dynamo.System {
	const sigma, beta = 10.0, 8.0 / 3.0
	f := &dynamo.Func{
		N: 3,
		F: func(x dynamo.State, rho float64) dynamo.State {
			return dynamo.State{
				sigma * (x[1] - x[0]),
				x[0]*(rho-x[2]) - x[1],
				x[0]*x[1] - beta*x[2],
			}
		},
		Jac: func(x dynamo.State, rho float64) [][]float64 {
			return [][]float64{
				{-sigma, sigma, 0},
				{rho - x[2], -1, -x[0]},
				{x[1], x[0], -beta},
			}
		},
		DP: func(x dynamo.State, rho float64) dynamo.State {
			return dynamo.State{0, x[0], 0}
		},
	}
	return f.WithJacobians()
}

func testParams(start, end, ds float64, steps int) Params {
	p := DefaultParams()
	p.Parameter = "mu"
	p.Start, p.End = start, end
	p.Ds = ds
	p.MaxSteps = steps
	return p
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"zero ds", func(p *Params) { p.Ds = 0 }, false},
		{"negative ds_min", func(p *Params) { p.DsMin = -1 }, false},
		{"ds_min above ds_max", func(p *Params) { p.DsMin = 1; p.DsMax = 0.5 }, false},
		{"zero steps", func(p *Params) { p.MaxSteps = 0 }, false},
		{"zero tolerance", func(p *Params) { p.NewtonTol = 0 }, false},
		{"zero iterations", func(p *Params) { p.NewtonMaxIter = 0 }, false},
		{"nan start", func(p *Params) { p.Start = math.NaN() }, false},
		{"reversed range", func(p *Params) { p.Start, p.End = 1, -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Ds != 0.01 || p.DsMin != 1e-6 || p.DsMax != 0.1 {
		t.Errorf("unexpected step defaults: %+v", p)
	}
	if p.MaxSteps != 200 || p.NewtonTol != 1e-10 || p.NewtonMaxIter != 100 {
		t.Errorf("unexpected solver defaults: %+v", p)
	}
	if !p.DetectBifurcations || p.SwitchPerturbation != 1e-3 {
		t.Errorf("unexpected detection defaults: %+v", p)
	}
}

func TestBifurcationTypeText(t *testing.T) {
	for typ := Regular; typ <= UserZero; typ++ {
		text, err := typ.MarshalText()
		if err != nil {
			t.Fatalf("marshal %d: %v", typ, err)
		}
		var back BifurcationType
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if back != typ {
			t.Errorf("%q parsed as %v, want %v", text, back, typ)
		}
	}

	if _, err := ParseBifurcationType("cusp"); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown type, got %v", err)
	}
	if got := BifurcationType(42).String(); got != "BifurcationType(42)" {
		t.Errorf("out of range String() = %q", got)
	}
}

func TestClassifyPoint(t *testing.T) {
	tests := []struct {
		name string
		eigs []complex128
		want PointType
	}{
		{"empty", nil, Unknown},
		{"stable node", []complex128{-1, -2}, StableNode},
		{"unstable node", []complex128{1, 2}, UnstableNode},
		{"saddle", []complex128{-1, 2}, Saddle},
		{"stable focus", []complex128{complex(-0.5, 1), complex(-0.5, -1)}, StableFocus},
		{"unstable focus", []complex128{complex(0.5, 1), complex(0.5, -1)}, UnstableFocus},
		{"saddle focus", []complex128{-13, complex(0.5, 9), complex(0.5, -9)}, Saddle},
		{"center", []complex128{complex(0, 1), complex(0, -1)}, Center},
		{"zero eigenvalue", []complex128{0, -1}, Center},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPoint(tt.eigs); got != tt.want {
				t.Errorf("ClassifyPoint(%v) = %v, want %v", tt.eigs, got, tt.want)
			}
		})
	}
}

func TestClassifyHopfNormalFormAtOrigin(t *testing.T) {
	sys := hopfSystem()
	st := Classify(Jacobian(sys, dynamo.State{0, 0}, -0.5))

	if len(st.Eigenvalues) != 2 {
		t.Fatalf("got %d eigenvalues, want 2", len(st.Eigenvalues))
	}
	for _, e := range st.Eigenvalues {
		if real(e) >= 0 {
			t.Errorf("eigenvalue %v has non-negative real part", e)
		}
	}
	if !st.Stable {
		t.Error("origin should be stable at mu=-0.5")
	}
}

func TestClassifyUnstable(t *testing.T) {
	st := Classify(linalg.Matrix{{1, 0}, {0, -1}})
	if st.Stable {
		t.Error("saddle classified as stable")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		curr, prev []complex128
		want       BifurcationType
	}{
		{"real crossing", []complex128{-1, 0.05}, []complex128{-0.05, -1}, SaddleNode},
		{"hopf crossing", []complex128{complex(0.1, 1), complex(0.1, -1)}, []complex128{complex(-0.1, 1), complex(-0.1, -1)}, Hopf},
		{"no crossing", []complex128{-1, -2}, []complex128{-1.5, -2.5}, Regular},
		{"length mismatch", []complex128{1}, []complex128{-1, -2}, Regular},
		{"empty", nil, nil, Regular},
		{"zero counts as crossing", []complex128{0, -1}, []complex128{-0.1, -1}, SaddleNode},
		{"near-coincident real pair", []complex128{0.01, -0.03}, []complex128{-0.01, -0.02}, SaddleNode},
		{"hopf under a real eigenvalue", []complex128{-0.3, complex(0.05, 1), complex(0.05, -1)}, []complex128{-0.1, complex(-0.2, 1), complex(-0.2, -1)}, Hopf},
		// A real pair colliding into a complex pair that is already unstable
		// is missed by rank pairing.
		{"collision missed", []complex128{complex(0.02, 0.5), complex(0.02, -0.5)}, []complex128{-0.05, -0.06}, Regular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.curr, tt.prev)
			if got != tt.want {
				t.Errorf("Detect = %v, want %v", got, tt.want)
			}
			if ok != (tt.want != Regular) {
				t.Errorf("ok = %v for %v", ok, got)
			}
		})
	}
}

func TestDetectDoesNotReorderInput(t *testing.T) {
	curr := []complex128{-2, 0.5, -1}
	prev := []complex128{-2, -0.5, -1}
	want := append([]complex128(nil), curr...)

	Detect(curr, prev)
	if diff := cmp.Diff(want, curr); diff != "" {
		t.Errorf("input reordered (-want +got):\n%s", diff)
	}
}

func TestCriticalEigenvalues(t *testing.T) {
	eigs := []complex128{-5, complex(0.05, 2), complex(0.05, -2), -0.099, 0.1}
	got := CriticalEigenvalues(eigs)
	want := []complex128{complex(0.05, 2), complex(0.05, -2), -0.099}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CriticalEigenvalues mismatch (-want +got):\n%s", diff)
	}
}

func TestNumericalJacobianMatchesAnalytic(t *testing.T) {
	analytic := lorenzSystem()
	numeric := &dynamo.Func{N: 3, F: analytic.RHS}
	x := dynamo.State{1.5, -0.7, 20}

	ja := Jacobian(analytic, x, 28)
	jn := Jacobian(numeric, x, 28)
	if d := ja.MaxAbsDiff(jn); d > 1e-6 {
		t.Errorf("numerical jacobian differs by %e", d)
	}

	dpa := ParamDerivative(analytic, x, 28)
	dpn := ParamDerivative(numeric, x, 28)
	for i := range dpa {
		if math.Abs(dpa[i]-dpn[i]) > 1e-6 {
			t.Errorf("dF/dp[%d] = %v, want %v", i, dpn[i], dpa[i])
		}
	}
}

func TestFoldNormalFormResidual(t *testing.T) {
	sys := foldSystem()
	for _, c := range []struct{ x, mu float64 }{{0, 0}, {1, 1}} {
		if r := sys.RHS(dynamo.State{c.x}, c.mu); math.Abs(r[0]) > 1e-12 {
			t.Errorf("rhs(%v, %v) = %v", c.x, c.mu, r[0])
		}
	}
}

func TestNaturalFoldNormalForm(t *testing.T) {
	params := testParams(0, 2, 0.1, 30)
	params.DetectBifurcations = false

	b, err := Natural(foldSystem(), dynamo.State{0.01}, params)
	if err != nil {
		t.Fatalf("natural continuation failed: %v", err)
	}
	if b.Len() <= 10 {
		t.Errorf("got %d points, want more than 10", b.Len())
	}
	last, _ := b.Last()
	if last.Parameter <= 1.5 {
		t.Errorf("last parameter %v, want > 1.5", last.Parameter)
	}
	if math.Abs(last.State[0]-math.Sqrt(last.Parameter)) > 1e-6 {
		t.Errorf("x = %v at mu = %v, want sqrt(mu)", last.State[0], last.Parameter)
	}
	if b.Name != "natural" {
		t.Errorf("branch name %q", b.Name)
	}
	if b.Stats.Steps != b.Len() {
		t.Errorf("stats report %d steps for %d points", b.Stats.Steps, b.Len())
	}
	if b.Stats.NewtonIterations == 0 || b.Stats.NewtonIterations != b.Stats.JacobianEvaluations {
		t.Errorf("newton/jacobian counters: %+v", b.Stats)
	}
	if len(b.Bifurcations) != 0 {
		t.Errorf("detection disabled but found %d bifurcations", len(b.Bifurcations))
	}
}

func TestNaturalFailsAtFold(t *testing.T) {
	b, err := Natural(foldSystem(), dynamo.State{1}, testParams(1, -1, 0.1, 50))
	if err == nil {
		t.Fatal("natural continuation should fail past the fold")
	}
	if !errors.Is(err, dynamo.ErrConvergenceFailed) && !errors.Is(err, dynamo.ErrSingularJacobian) {
		t.Errorf("unexpected error kind: %v", err)
	}

	var ce *dynamo.ContinuationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ContinuationError, got %T", err)
	}
	if ce.Parameter >= 0 {
		t.Errorf("failure reported at mu=%v, want past the fold", ce.Parameter)
	}
	if b == nil || b.Len() == 0 {
		t.Fatal("partial branch not returned")
	}
	last, _ := b.Last()
	if last.Parameter < -1e-9 {
		t.Errorf("accepted point at mu=%v beyond the fold", last.Parameter)
	}
}

func TestNaturalIsDeterministic(t *testing.T) {
	params := testParams(-0.5, 0.5, 0.05, 100)
	a, errA := Natural(hopfSystem(), dynamo.State{0, 0}, params)
	b, errB := Natural(hopfSystem(), dynamo.State{0, 0}, params)
	if errA != nil || errB != nil {
		t.Fatalf("runs failed: %v, %v", errA, errB)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("branches differ (-first +second):\n%s", diff)
	}
}

func TestNaturalDetectsHopf(t *testing.T) {
	b, err := Natural(hopfSystem(), dynamo.State{0, 0}, testParams(-0.5, 0.5, 0.1, 50))
	if err != nil {
		t.Fatalf("natural continuation failed: %v", err)
	}
	if b.Len() != 11 {
		t.Errorf("got %d points, want 11", b.Len())
	}
	if len(b.Bifurcations) != 1 {
		t.Fatalf("got %d bifurcations, want 1", len(b.Bifurcations))
	}

	bp := b.Bifurcations[0]
	if bp.Type != Hopf {
		t.Errorf("type = %v, want hopf", bp.Type)
	}
	if bp.Parameter < -1e-9 || bp.Parameter > 0.1+1e-9 {
		t.Errorf("hopf at mu=%v, want near 0", bp.Parameter)
	}
	if bp.Tangent != nil {
		t.Error("natural continuation should not record tangents")
	}
	if bp.Period == nil || math.Abs(*bp.Period-2*math.Pi) > 1e-6 {
		t.Errorf("period = %v, want 2pi", bp.Period)
	}

	pt := b.Points[bp.Index]
	if pt.Bifurcation != Hopf || pt.Parameter != bp.Parameter {
		t.Errorf("tagged point %+v does not match bifurcation %+v", pt, bp)
	}
	if diff := cmp.Diff(pt.State, bp.State); diff != "" {
		t.Errorf("bifurcation state differs from point:\n%s", diff)
	}
	if b.Stats.Bifurcations != 1 {
		t.Errorf("stats report %d bifurcations", b.Stats.Bifurcations)
	}
}

func TestNaturalStepBudget(t *testing.T) {
	b, err := Natural(foldSystem(), dynamo.State{1}, testParams(1, 100, 0.5, 5))
	if err != nil {
		t.Fatalf("step budget must not be an error: %v", err)
	}
	if b.Len() != 5 {
		t.Errorf("got %d points, want 5", b.Len())
	}
}

func TestNaturalInvariants(t *testing.T) {
	b, err := Natural(lorenzSystem(), lorenzEquilibrium(2), testParams(2, 30, 0.5, 100))
	if err != nil {
		t.Fatalf("natural continuation failed: %v", err)
	}
	checkInvariants(t, b, 3)
}

func TestNaturalInputErrors(t *testing.T) {
	if _, err := Natural(foldSystem(), dynamo.State{1, 2}, testParams(0, 1, 0.1, 10)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := Natural(foldSystem(), dynamo.State{1}, testParams(0, 1, 0, 10)); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := Natural(foldSystem(), dynamo.State{math.NaN()}, testParams(0, 1, 0.1, 10)); !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestArclengthPassesFold(t *testing.T) {
	params := testParams(1, -1, 0.05, 60)
	params.DsMax = 0.1

	b, err := Arclength(foldSystem(), dynamo.State{1}, params)
	if err != nil {
		t.Fatalf("arclength continuation failed: %v", err)
	}

	sawNegative, sawPositive := false, false
	for i, pt := range b.Points {
		if len(pt.Tangent) != 2 {
			t.Fatalf("point %d has tangent %v", i, pt.Tangent)
		}
		if n := dynamo.State(pt.Tangent).Norm(); math.Abs(n-1) > 1e-12 {
			t.Errorf("point %d tangent norm %v", i, n)
		}
		if pt.Tangent[1] < 0 {
			if sawPositive {
				t.Errorf("dp/ds turned negative again at point %d", i)
			}
			sawNegative = true
		} else if pt.Tangent[1] > 0 {
			sawPositive = true
		}
		if pt.Parameter < -1e-8 {
			t.Errorf("point %d at mu=%v, no equilibria exist there", i, pt.Parameter)
		}
	}
	if !sawNegative || !sawPositive {
		t.Error("dp/ds did not change sign across the fold")
	}

	last, _ := b.Last()
	if last.State[0] >= 0 {
		t.Errorf("branch did not reach the lower half, last x = %v", last.State[0])
	}

	if len(b.Bifurcations) != 1 || b.Bifurcations[0].Type != SaddleNode {
		t.Fatalf("bifurcations = %+v, want one saddle-node", b.Bifurcations)
	}
	bp := b.Bifurcations[0]
	if math.Abs(bp.Parameter) > 0.01 {
		t.Errorf("saddle-node at mu=%v, want near 0", bp.Parameter)
	}
	if len(bp.Tangent) != 2 {
		t.Errorf("saddle-node tangent %v", bp.Tangent)
	}
	checkInvariants(t, b, 1)
}

func TestArclengthStepTooSmall(t *testing.T) {
	params := testParams(1, -1, 0.1, 60)
	params.DsMin = 1e-3
	params.NewtonTol = 1e-14
	params.NewtonMaxIter = 1

	b, err := Arclength(foldSystem(), dynamo.State{1}, params)
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}

	var se *dynamo.StepError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StepError in chain, got %T", err)
	}
	if se.Ds >= params.DsMin {
		t.Errorf("final ds %v not below ds_min", se.Ds)
	}
	if b == nil || b.Len() != 1 {
		t.Fatalf("partial branch should hold the initial point, got %v", b)
	}
	if b.Stats.StepReductions != 7 {
		t.Errorf("step reductions = %d, want 7", b.Stats.StepReductions)
	}
}

func TestArclengthLorenzHopf(t *testing.T) {
	params := testParams(2, 30, 0.5, 200)
	params.DsMax = 1

	b, err := Arclength(lorenzSystem(), lorenzEquilibrium(2), params)
	if err != nil {
		t.Fatalf("arclength continuation failed: %v", err)
	}
	last, _ := b.Last()
	if last.Parameter < 30 {
		t.Errorf("run ended at rho=%v before the end of range", last.Parameter)
	}

	var hopf []BifurcationPoint
	for _, bp := range b.Bifurcations {
		if bp.Type == Hopf {
			hopf = append(hopf, bp)
		}
	}
	if len(hopf) != 1 {
		t.Fatalf("found %d hopf points, want 1", len(hopf))
	}
	if hopf[0].Parameter < 24 || hopf[0].Parameter > 26 {
		t.Errorf("hopf at rho=%v, want near 24.74", hopf[0].Parameter)
	}
	if hopf[0].Period == nil || *hopf[0].Period < 0.6 || *hopf[0].Period > 0.7 {
		t.Errorf("hopf period %v, want about 2pi/9.6", hopf[0].Period)
	}
	checkInvariants(t, b, 3)
}

func TestArclengthReportsToObserverAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	seen := 0

	b, err := Arclength(transcriticalSystem(), dynamo.State{0}, testParams(-1, 1, 0.1, 100),
		WithLogger(zap.New(core)),
		WithName("trivial"),
		WithObserver(func(SolutionPoint) { seen++ }))
	if err != nil {
		t.Fatalf("arclength continuation failed: %v", err)
	}
	if b.Name != "trivial" {
		t.Errorf("branch name %q", b.Name)
	}
	if seen != b.Len() {
		t.Errorf("observer saw %d points, branch has %d", seen, b.Len())
	}
	if n := logs.FilterMessage("bifurcation detected").Len(); n != len(b.Bifurcations) || n == 0 {
		t.Errorf("logged %d bifurcations, branch has %d", n, len(b.Bifurcations))
	}
	if logs.FilterMessage("continuation finished").Len() != 1 {
		t.Error("missing termination log")
	}
}

func TestCancelledRunReturnsPartialBranch(t *testing.T) {
	drivers := map[string]func(dynamo.System, dynamo.State, Params, ...Option) (*Branch, error){
		"natural":   Natural,
		"arclength": Arclength,
	}
	for name, run := range drivers {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			b, err := run(foldSystem(), dynamo.State{0.1}, testParams(0.01, 2, 0.05, 100),
				WithContext(ctx),
				WithObserver(func(SolutionPoint) {
					if ctx.Err() == nil {
						cancel()
					}
				}))
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			var ce *dynamo.ContinuationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ContinuationError, got %T", err)
			}
			if b == nil || b.Len() != 1 {
				t.Errorf("want the single point accepted before cancellation, got %v", b)
			}
		})
	}
}

func TestArclengthThroughExactBranchPoint(t *testing.T) {
	// From -1 in steps of 0.1 the trivial branch lands on mu ≈ -1.4e-16,
	// where F_x and F_p both vanish to within the pivot threshold.
	core, logs := observer.New(zapcore.DebugLevel)
	params := testParams(-1, 1, 0.1, 100)
	b, err := Arclength(transcriticalSystem(), dynamo.State{0}, params, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("arclength continuation failed after %d points: %v", b.Len(), err)
	}
	last, _ := b.Last()
	if last.Parameter < params.End {
		t.Errorf("stopped at mu=%v, want past %v", last.Parameter, params.End)
	}
	for i, pt := range b.Points {
		if math.Abs(pt.State[0]) > 1e-12 {
			t.Fatalf("point %d left the trivial branch: %v", i, pt.State)
		}
	}
	if len(b.Bifurcations) != 1 || math.Abs(b.Bifurcations[0].Parameter) > 0.1+1e-9 {
		t.Errorf("bifurcations = %+v, want one next to mu=0", b.Bifurcations)
	}
	if n := logs.FilterMessage("no regular border, keeping previous tangent").Len(); n > 1 {
		t.Errorf("previous tangent reused %d times", n)
	}
}

func TestTangentAtExactBranchPoint(t *testing.T) {
	r, err := newRunner(transcriticalSystem(), dynamo.State{0}, testParams(-1, 1, 0.1, 10), "test", nil)
	if err != nil {
		t.Fatal(err)
	}

	prev := []float64{0, 1}
	tan, err := r.tangent(dynamo.State{0}, 0, prev, 1)
	if err != nil {
		t.Fatalf("tangent at the branch point: %v", err)
	}
	if diff := cmp.Diff(prev, tan); diff != "" {
		t.Errorf("tangent mismatch (-want +got):\n%s", diff)
	}

	// the orientation rule still applies to the reused direction
	tan, err = r.tangent(dynamo.State{0}, 0, []float64{0, -1}, 1)
	if err != nil || tan[1] != -1 {
		t.Errorf("tangent = %v, %v; want [0 -1]", tan, err)
	}

	if _, err := r.tangent(dynamo.State{0}, 0, nil, 1); !errors.Is(err, dynamo.ErrSingularJacobian) {
		t.Errorf("without a previous tangent: err = %v, want ErrSingularJacobian", err)
	}
}

func TestSwitchBranch(t *testing.T) {
	// ds = 0.07 keeps the parent steps off mu = 0 exactly.
	params := testParams(-1, 1, 0.07, 100)
	parent, err := Arclength(transcriticalSystem(), dynamo.State{0}, params)
	if err != nil {
		t.Fatalf("arclength continuation failed: %v", err)
	}
	if len(parent.Bifurcations) != 1 {
		t.Fatalf("bifurcations = %+v, want one on the trivial branch", parent.Bifurcations)
	}
	bp := parent.Bifurcations[0]
	if bp.Type != SaddleNode || bp.Parameter <= 0 || bp.Parameter > 0.1 {
		t.Errorf("bifurcation %v at mu=%v, want saddle-node just past 0", bp.Type, bp.Parameter)
	}

	b, err := SwitchBranch(transcriticalSystem(), bp, 0.01, params)
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if b.Name != "switched" || b.Stats.BranchSwitches != 1 {
		t.Errorf("name %q, switches %d", b.Name, b.Stats.BranchSwitches)
	}
	if b.Len() < 5 || b.Stats.Steps != b.Len() {
		t.Fatalf("switched branch has %d points, stats %+v", b.Len(), b.Stats)
	}
	wantStart := bp.Parameter + 0.01*bp.Tangent[1]
	if got := b.Points[0].Parameter; math.Abs(got-wantStart) > 1e-12 {
		t.Errorf("switched branch starts at %v, want %v", got, wantStart)
	}

	// The stored tangent is the parent's direction, so the perturbed start
	// stays on x = 0 and the new branch runs on along it to the end.
	for i, pt := range b.Points {
		if math.Abs(pt.State[0]) > 1e-12 {
			t.Errorf("point %d at mu=%v has x=%v, want the trivial branch", i, pt.Parameter, pt.State[0])
		}
	}
	last, _ := b.Last()
	if last.Parameter < params.End {
		t.Errorf("switched branch stops at mu=%v, want past %v", last.Parameter, params.End)
	}
	if len(b.Bifurcations) != 0 {
		t.Errorf("switched branch bifurcations = %+v, want none", b.Bifurcations)
	}
}

func TestSwitchBranchRequiresTangent(t *testing.T) {
	bp := BifurcationPoint{Type: SaddleNode, State: dynamo.State{0}}
	_, err := SwitchBranch(foldSystem(), bp, 1e-3, DefaultParams())
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	bp.Tangent = []float64{1, 0, 0}
	_, err = SwitchBranch(foldSystem(), bp, 1e-3, DefaultParams())
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestFindEquilibria(t *testing.T) {
	guesses := []dynamo.State{{2}, {0.5}, {0}, {-2}, {1.0000001}}
	eqs, err := FindEquilibria(foldSystem(), 1, guesses, DefaultParams())
	if err != nil {
		t.Fatalf("find equilibria failed: %v", err)
	}
	if len(eqs) != 2 {
		t.Fatalf("found %d equilibria, want 2: %+v", len(eqs), eqs)
	}

	want := []struct {
		x      float64
		stable bool
		typ    PointType
	}{
		{1, true, StableNode},
		{-1, false, UnstableNode},
	}
	for i, w := range want {
		e := eqs[i]
		if math.Abs(e.State[0]-w.x) > 1e-8 {
			t.Errorf("equilibrium %d at %v, want %v", i, e.State[0], w.x)
		}
		if e.Stable != w.stable || e.Type != w.typ {
			t.Errorf("equilibrium %d: stable=%v type=%v, want %v %v", i, e.Stable, e.Type, w.stable, w.typ)
		}
		if e.Parameter != 1 {
			t.Errorf("equilibrium %d parameter %v", i, e.Parameter)
		}
	}
}

func lorenzEquilibrium(rho float64) dynamo.State {
	c := math.Sqrt(8.0 / 3.0 * (rho - 1))
	return dynamo.State{c, c, rho - 1}
}

func checkInvariants(t *testing.T, b *Branch, dim int) {
	t.Helper()
	prevS := math.Inf(-1)
	for i, pt := range b.Points {
		if len(pt.Eigenvalues) != dim {
			t.Errorf("point %d has %d eigenvalues", i, len(pt.Eigenvalues))
		}
		if pt.Stable != allNegative(pt.Eigenvalues) {
			t.Errorf("point %d stable=%v with eigenvalues %v", i, pt.Stable, pt.Eigenvalues)
		}
		if pt.Arclength < prevS {
			t.Errorf("arclength decreased at point %d", i)
		}
		prevS = pt.Arclength
	}
	for _, bp := range b.Bifurcations {
		pt := b.Points[bp.Index]
		if pt.Parameter != bp.Parameter || cmp.Diff(pt.State, bp.State) != "" {
			t.Errorf("bifurcation %v does not match point %d", bp.Type, bp.Index)
		}
	}
}
