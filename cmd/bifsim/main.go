package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/bifsim/internal/analysis"
	"github.com/san-kum/bifsim/internal/automation"
	"github.com/san-kum/bifsim/internal/config"
	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
	"github.com/san-kum/bifsim/internal/experiment"
	"github.com/san-kum/bifsim/internal/export"
	"github.com/san-kum/bifsim/internal/integrators"
	"github.com/san-kum/bifsim/internal/linalg"
	"github.com/san-kum/bifsim/internal/models"
	"github.com/san-kum/bifsim/internal/storage"
	"github.com/san-kum/bifsim/internal/viz"
)

var (
	dataDir string
	verbose bool
	logger  = zap.NewNop()

	// run
	method        string
	parameter     string
	parStart      float64
	parEnd        float64
	ds            float64
	dsMin         float64
	dsMax         float64
	maxSteps      int
	newtonTol     float64
	newtonMaxIter int
	noDetect      bool
	initState     string
	assignments   []string
	configFile    string
	preset        string

	// switch
	perturbation float64

	// equilibria
	at      float64
	guesses []string

	// eig
	matrix string

	// plot / show
	plotVar    string
	plotWidth  int
	plotHeight int
	theme      string
	svgWidth   int
	svgHeight  int

	// probe
	probeDt       float64
	probeDuration float64
	probeAmp      float64
	probeInteg    string

	// sweep
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepGuesses int
	sweepSpread  float64
	sweepSeed    int64
	sweepWorkers int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "bifsim",
		Short:        "numerical continuation and bifurcation analysis",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			l, err := cfg.Build()
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bifsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "trace a branch of equilibria",
		Args:  cobra.ExactArgs(1),
		RunE:  runContinuation,
	}
	runCmd.Flags().StringVar(&method, "method", config.DefaultMethod, "natural or arclength")
	runCmd.Flags().StringVar(&parameter, "param", config.DefaultParameter, "continuation parameter")
	runCmd.Flags().Float64Var(&parStart, "start", config.DefaultParStart, "parameter start value")
	runCmd.Flags().Float64Var(&parEnd, "end", config.DefaultParEnd, "parameter end value")
	runCmd.Flags().Float64Var(&ds, "ds", 0.01, "initial step")
	runCmd.Flags().Float64Var(&dsMin, "ds-min", 1e-6, "minimum step")
	runCmd.Flags().Float64Var(&dsMax, "ds-max", 0.1, "maximum step")
	runCmd.Flags().IntVar(&maxSteps, "steps", 200, "maximum number of points")
	runCmd.Flags().Float64Var(&newtonTol, "tol", 1e-10, "newton tolerance")
	runCmd.Flags().IntVar(&newtonMaxIter, "max-iter", 100, "newton iteration limit")
	runCmd.Flags().BoolVar(&noDetect, "no-detect", false, "skip bifurcation detection")
	runCmd.Flags().StringVar(&initState, "x0", "", "initial state, comma separated")
	runCmd.Flags().StringArrayVar(&assignments, "set", nil, "model parameter override name=value (repeatable)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	switchCmd := &cobra.Command{
		Use:   "switch [run_id] [index]",
		Short: "start a new branch at a detected bifurcation",
		Args:  cobra.ExactArgs(2),
		RunE:  switchBranch,
	}
	switchCmd.Flags().Float64Var(&perturbation, "eps", 0, "perturbation along the tangent (default: run setting)")

	equilibriaCmd := &cobra.Command{
		Use:   "equilibria [model]",
		Short: "find equilibria at a fixed parameter value",
		Args:  cobra.ExactArgs(1),
		RunE:  findEquilibria,
	}
	equilibriaCmd.Flags().StringVar(&parameter, "param", "", "parameter (default: model's first preset)")
	equilibriaCmd.Flags().Float64Var(&at, "at", 0, "parameter value (default: model's current value)")
	equilibriaCmd.Flags().StringArrayVar(&guesses, "guess", nil, "initial guess, comma separated (repeatable)")
	equilibriaCmd.Flags().StringArrayVar(&assignments, "set", nil, "model parameter override name=value (repeatable)")

	eigCmd := &cobra.Command{
		Use:   "eig",
		Short: "eigenvalues and stability of a matrix",
		Args:  cobra.NoArgs,
		RunE:  eigenvalues,
	}
	eigCmd.Flags().StringVar(&matrix, "matrix", "", `matrix rows separated by ";", e.g. "0,1;-1,0"`)
	_ = eigCmd.MarkFlagRequired("matrix")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "ascii bifurcation diagram of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotVar, "var", "", "state variable name or index, or p (default: first variable)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "browse the points of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&theme, "theme", viz.Themes[0].Name, "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run points to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a bifurcation diagram of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&plotVar, "var", "", "state variable name or index (default: first variable)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 640, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")

	probeCmd := &cobra.Command{
		Use:   "probe [run_id] [point]",
		Short: "check the stability of a stored point by simulation",
		Args:  cobra.ExactArgs(2),
		RunE:  probePoint,
	}
	defaults := analysis.DefaultProbeConfig()
	probeCmd.Flags().Float64Var(&probeDt, "dt", defaults.Dt, "integration step")
	probeCmd.Flags().Float64Var(&probeDuration, "duration", defaults.Duration, "integration time")
	probeCmd.Flags().Float64Var(&probeAmp, "amp", defaults.Amplitude, "perturbation size")
	probeCmd.Flags().StringVar(&probeInteg, "integrator", defaults.Integrator, "time stepper: "+strings.Join(integrators.Names(), ", "))

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, name := range presets {
				p := config.GetPreset(args[0], name)
				fmt.Printf("  %-14s %s %s %g → %g\n", name, p.Method, p.Parameter, p.ParStart, p.ParEnd)
			}
			return nil
		},
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of continuations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "search for equilibria on a parameter grid",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&parameter, "param", "", "parameter (default: model's first preset)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -1, "first parameter value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last parameter value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 21, "number of parameter values")
	sweepCmd.Flags().IntVar(&sweepGuesses, "guesses", 16, "newton starts per parameter value")
	sweepCmd.Flags().Float64Var(&sweepSpread, "spread", 2, "guess scatter around the default state")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", 1, "random seed")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 1, "parameter values solved concurrently")
	sweepCmd.Flags().StringArrayVar(&assignments, "set", nil, "model parameter override name=value (repeatable)")

	rootCmd.AddCommand(runCmd, switchCmd, equilibriaCmd, eigCmd, listCmd, plotCmd, showCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, probeCmd, modelsCmd, presetsCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runContinuation(cmd *cobra.Command, args []string) error {
	model := args[0]
	reg := models.NewRegistry()
	if _, err := reg.Get(model); err != nil {
		return fmt.Errorf("%w (available: %v)", err, reg.List())
	}

	cfg := baseConfig(model)
	if preset != "" {
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}

	// Config file overrides the preset.
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		cfg.Model = model
	}

	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(reg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("tracing %s branch of %s in %s from %g toward %g...\n", cfg.Method, model, cfg.Parameter, cfg.ParStart, cfg.ParEnd)
	res, err := exp.Run(ctx, cont.WithLogger(logger))
	if res == nil {
		return err
	}

	runID, saveErr := st.Save(res.Metadata(), res.Branch)
	if saveErr != nil {
		return saveErr
	}
	report(runID, res)
	return nil
}

// applyRunFlags copies the explicitly set run flags onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("param") {
		cfg.Parameter = parameter
	}
	if flags.Changed("start") {
		cfg.ParStart = parStart
	}
	if flags.Changed("end") {
		cfg.ParEnd = parEnd
	}
	if flags.Changed("ds") {
		cfg.Ds = ds
	}
	if flags.Changed("ds-min") {
		cfg.DsMin = dsMin
	}
	if flags.Changed("ds-max") {
		cfg.DsMax = dsMax
	}
	if flags.Changed("steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("tol") {
		cfg.NewtonTol = newtonTol
	}
	if flags.Changed("max-iter") {
		cfg.NewtonMaxIter = newtonMaxIter
	}
	if flags.Changed("no-detect") {
		cfg.DetectBifurcations = !noDetect
	}
	if flags.Changed("x0") {
		x, err := parseVector(initState)
		if err != nil {
			return fmt.Errorf("--x0: %w", err)
		}
		cfg.InitState = x
	}
	return applyAssignments(cfg)
}

func applyAssignments(cfg *config.Config) error {
	set, err := parseAssignments(assignments)
	if err != nil {
		return fmt.Errorf("--set: %w", err)
	}
	if len(set) > 0 && cfg.ModelParams == nil {
		cfg.ModelParams = make(map[string]float64, len(set))
	}
	for k, v := range set {
		cfg.ModelParams[k] = v
	}
	return nil
}

func report(runID string, res *experiment.Result) {
	b := res.Branch
	fmt.Printf("run id: %s\n", runID)
	if res.Err != nil {
		fmt.Printf("stopped early: %v\n", res.Err)
	}
	fmt.Println()
	fmt.Print(viz.Summary(b, res.Vars, viz.NewStyles(viz.ThemeMinimal)))
}

func switchBranch(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bifurcation index: %w", err)
	}

	st := storage.New(dataDir)
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	parent, meta, err := st.LoadBranch(runID)
	if err != nil {
		return err
	}
	bp, err := parent.Bifurcation(index)
	if err != nil {
		return err
	}

	exp := experiment.New(experiment.FromRun(meta))
	if err := exp.Setup(models.NewRegistry()); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("switching at %s point %d (%s=%g)...\n", bp.Type, index, meta.Params.Parameter, bp.Parameter)
	res, err := exp.Switch(ctx, bp, perturbation, cont.WithLogger(logger))
	if res == nil {
		return err
	}

	rec := res.Metadata()
	rec.Parent, rec.ParentBifurcation = runID, index
	newID, err := st.Save(rec, res.Branch)
	if err != nil {
		return err
	}
	report(newID, res)
	return nil
}

func findEquilibria(cmd *cobra.Command, args []string) error {
	model := args[0]
	cfg := baseConfig(model)
	if parameter != "" {
		cfg.Parameter = parameter
	}
	if err := applyAssignments(cfg); err != nil {
		return err
	}

	reg := models.NewRegistry()
	m, err := reg.Configure(model, cfg.ModelParams)
	if err != nil {
		return err
	}
	p, ok := m.GetParams()[cfg.Parameter]
	if !ok {
		return fmt.Errorf("model %s has no parameter %q: %w", model, cfg.Parameter, dynamo.ErrInvalidParameter)
	}
	if cmd.Flags().Changed("at") {
		p = at
	}
	cfg.ParStart = p

	starts := make([]dynamo.State, 0, len(guesses))
	for _, g := range guesses {
		x, err := parseVector(g)
		if err != nil {
			return fmt.Errorf("--guess: %w", err)
		}
		starts = append(starts, x)
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(reg); err != nil {
		return err
	}
	eqs, err := exp.Equilibria(p, starts, cont.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Printf("%s at %s=%g: %d equilibria\n\n", model, cfg.Parameter, p, len(eqs))
	vars := exp.Model().Vars()
	for i, e := range eqs {
		stability := "unstable"
		if e.Stable {
			stability = "stable"
		}
		fmt.Printf("[%d] %s\n    %s %s, eigenvalues %v\n", i, formatState(e.State, vars), stability, e.Type, e.Eigenvalues)
	}
	return nil
}

func eigenvalues(cmd *cobra.Command, args []string) error {
	a, err := linalg.ParseMatrix(matrix)
	if err != nil {
		return err
	}
	if !a.IsSquare() {
		return fmt.Errorf("matrix is %dx%d: %w", a.Rows(), a.Cols(), dynamo.ErrDimensionMismatch)
	}

	st := cont.Classify(a)
	for i, e := range st.Eigenvalues {
		fmt.Printf("λ%d = %v\n", i, e)
	}
	stability := "unstable"
	if st.Stable {
		stability = "stable"
	}
	fmt.Printf("%s %s\n", stability, cont.ClassifyPoint(st.Eigenvalues))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMETHOD\tPARAM\tPOINTS\tBIFS\tTIME\tNOTE")

	for _, run := range runs {
		note := run.Error
		if run.Parent != "" {
			note = fmt.Sprintf("from %.8s[%d] %s", run.Parent, run.ParentBifurcation, note)
		}
		fmt.Fprintf(w, "%.8s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Method,
			run.Params.Parameter,
			run.Points,
			run.Stats.Bifurcations,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			note,
		)
	}

	return w.Flush()
}

func loadRun(prefix string) (*cont.Branch, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	runID, err := st.Resolve(prefix)
	if err != nil {
		return nil, nil, err
	}
	return st.LoadBranch(runID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	b, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}

	component, label, err := resolveVar(plotVar, meta.Vars)
	if err != nil {
		return err
	}
	if component == viz.ParamComponent {
		label = meta.Params.Parameter
	}

	graph, err := viz.BranchPlot(b, component, viz.PlotOptions{Width: plotWidth, Height: plotHeight, Label: label})
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)
	fmt.Println(graph)
	fmt.Println()
	fmt.Print(viz.Summary(b, meta.Vars, viz.NewStyles(viz.ThemeMinimal)))
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	b, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s · %s", meta.Model, meta.Params.Parameter)
	m := viz.NewBrowser(title, b, meta.Vars).WithTheme(theme)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	b, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, b)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	b, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if b.Len() == 0 {
		return errors.New("no data to export")
	}
	return storage.WriteCSV(os.Stdout, b, meta.Vars)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	b, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	component, label, err := resolveVar(plotVar, meta.Vars)
	if err != nil {
		return err
	}
	opts := export.DefaultSVGOptions()
	opts.Width, opts.Height, opts.Label = svgWidth, svgHeight, label
	return export.BranchSVG(os.Stdout, b, component, opts)
}

func probePoint(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("point index: %w", err)
	}
	b, meta, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if index < 0 || index >= b.Len() {
		return fmt.Errorf("point %d of %d: %w", index, b.Len(), dynamo.ErrInvalidParameter)
	}
	pt := b.Points[index]

	exp := experiment.New(experiment.FromRun(meta))
	if err := exp.Setup(models.NewRegistry()); err != nil {
		return err
	}

	cfg := analysis.ProbeConfig{Amplitude: probeAmp, Dt: probeDt, Duration: probeDuration, Integrator: probeInteg}
	logger.Debug("probing point",
		zap.String("run", meta.ID),
		zap.Int("point", index),
		zap.Float64("parameter", pt.Parameter))
	res, err := analysis.Probe(exp.System(), pt.State, pt.Parameter, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("point %d: %s=%g  %s\n", index, meta.Params.Parameter, pt.Parameter, formatState(pt.State, meta.Vars))
	fmt.Printf("eigenvalues:  %s (%s)\n", pt.Type, stabilityWord(pt.Stable))
	fmt.Printf("simulation:   growth rate %.4g (%s)\n", res.GrowthRate, stabilityWord(res.Stable))
	if res.Period > 0 {
		fmt.Printf("oscillation:  period %.4g\n", res.Period)
	}
	if res.Stable != pt.Stable {
		fmt.Println("warning: simulation disagrees with the eigenvalue classification")
	}
	return nil
}

func stabilityWord(stable bool) string {
	if stable {
		return "stable"
	}
	return "unstable"
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := models.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tDIM\tVARS\tPARAMETERS\tJACOBIAN")

	for _, name := range reg.List() {
		m, err := reg.Get(name)
		if err != nil {
			return err
		}
		params := models.Params(m.GetParams())
		parts := make([]string, 0, len(params))
		for _, k := range params.Names() {
			parts = append(parts, fmt.Sprintf("%s=%g", k, params[k]))
		}
		_, analytic := m.(models.JacobianModel)
		jac := "numeric"
		if analytic {
			jac = "analytic"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", name, m.Dim(), strings.Join(m.Vars(), ","), strings.Join(parts, " "), jac)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, runErr := automation.RunScenario(ctx, sc, models.NewRegistry(), logger)

	ids := make([]string, len(results))
	for i, r := range results {
		meta := r.Result.Metadata()
		if ref := sc.Steps[i].SwitchFrom; ref != nil {
			meta.Parent, meta.ParentBifurcation = ids[ref.Step], ref.Index
		}
		id, err := st.Save(meta, r.Result.Branch)
		if err != nil {
			return err
		}
		ids[i] = id

		status := "ok"
		if r.Err != nil {
			status = "stopped early: " + r.Err.Error()
		}
		fmt.Printf("  [%d] %-16s %s  %d points, %d bifurcations  %s\n",
			i+1, r.Name, id, r.Result.Branch.Len(), len(r.Result.Branch.Bifurcations), status)
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	model := args[0]
	cfg := baseConfig(model)
	if parameter != "" {
		cfg.Parameter = parameter
	}
	if err := applyAssignments(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	sweep := &automation.Sweep{
		Model:       model,
		ModelParams: cfg.ModelParams,
		ParamName:   cfg.Parameter,
		ParamMin:    sweepMin,
		ParamMax:    sweepMax,
		NumSteps:    sweepSteps,
		Spread:      sweepSpread,
		Guesses:     sweepGuesses,
		Seed:        sweepSeed,
		Workers:     sweepWorkers,
	}
	results, err := automation.RunSweep(ctx, sweep, models.NewRegistry(), logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tEQUILIBRIA\n", strings.ToUpper(cfg.Parameter))
	for _, r := range results {
		cells := make([]string, len(r.Equilibria))
		for i, e := range r.Equilibria {
			mark := "u"
			if e.Stable {
				mark = "s"
			}
			cells[i] = fmt.Sprintf("%s(%s)", formatVector(e.State), mark)
		}
		fmt.Fprintf(w, "%.6g\t%s\n", r.ParamValue, strings.Join(cells, " "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.SweepStats(results)
	fmt.Printf("\n%d stable, %d unstable equilibria\n", stable, unstable)
	return nil
}
