package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
)

// ParamComponent selects the continuation parameter in BranchPlot.
const ParamComponent = -1

type PlotOptions struct {
	Width  int
	Height int

	// Label names the plotted component in the caption.
	Label string
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 80, Height: 12}
}

// BranchPlot draws state component (or the parameter, for ParamComponent)
// against the point index. Stable and unstable stretches are drawn as
// separate series when the branch changes stability.
func BranchPlot(b *cont.Branch, component int, o PlotOptions) (string, error) {
	if b == nil || b.Len() == 0 {
		return "", errors.New("no points to plot")
	}
	if component != ParamComponent && (component < 0 || component >= len(b.Points[0].State)) {
		return "", fmt.Errorf("component %d of %d: %w", component, len(b.Points[0].State), dynamo.ErrDimensionMismatch)
	}

	values := make([]float64, b.Len())
	for i, pt := range b.Points {
		if component == ParamComponent {
			values[i] = pt.Parameter
		} else {
			values[i] = pt.State[component]
		}
	}

	label := o.Label
	if label == "" {
		label = "p"
		if component != ParamComponent {
			label = fmt.Sprintf("x%d", component)
		}
	}
	first, last := b.Points[0].Parameter, b.Points[b.Len()-1].Parameter
	caption := fmt.Sprintf("%s along %s branch, p %.4g → %.4g", label, b.Name, first, last)

	opts := []asciigraph.Option{
		asciigraph.Height(o.Height),
		asciigraph.Width(o.Width),
		asciigraph.Caption(caption),
	}

	stable, unstable, mixed := splitByStability(b, values)
	if !mixed {
		return asciigraph.Plot(values, opts...), nil
	}
	opts = append(opts, asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red))
	return asciigraph.PlotMany([][]float64{stable, unstable}, opts...), nil
}

// splitByStability copies values into a stable and an unstable series with
// NaN gaps. Points next to a stability change go into both so the series
// join up.
func splitByStability(b *cont.Branch, values []float64) (stable, unstable []float64, mixed bool) {
	stable = make([]float64, len(values))
	unstable = make([]float64, len(values))
	for i, pt := range b.Points {
		stable[i], unstable[i] = math.NaN(), math.NaN()
		edge := (i > 0 && b.Points[i-1].Stable != pt.Stable) ||
			(i+1 < len(b.Points) && b.Points[i+1].Stable != pt.Stable)
		if edge {
			mixed = true
		}
		if pt.Stable || edge {
			stable[i] = values[i]
		}
		if !pt.Stable || edge {
			unstable[i] = values[i]
		}
	}
	return stable, unstable, mixed
}

// Summary is a styled report of b: size, parameter range, counters and the
// detected bifurcations.
func Summary(b *cont.Branch, vars []string, s Styles) string {
	var sb strings.Builder

	sb.WriteString(s.Title.Render(fmt.Sprintf("branch %s", b.Name)))
	sb.WriteString("\n")

	if b.Len() == 0 {
		sb.WriteString(s.Subtle.Render("no points"))
		sb.WriteString("\n")
		return sb.String()
	}

	lo, hi := b.Points[0].Parameter, b.Points[0].Parameter
	stable := 0
	for _, pt := range b.Points {
		lo, hi = min(lo, pt.Parameter), max(hi, pt.Parameter)
		if pt.Stable {
			stable++
		}
	}

	field := func(label, value string) {
		sb.WriteString(s.Label.Render(fmt.Sprintf("%-14s", label)))
		sb.WriteString(s.Value.Render(value))
		sb.WriteString("\n")
	}
	field("points", fmt.Sprintf("%d (%d stable)", b.Len(), stable))
	field("parameter", fmt.Sprintf("[%.6g, %.6g]", lo, hi))
	field("newton iters", fmt.Sprintf("%d", b.Stats.NewtonIterations))
	field("step cuts", fmt.Sprintf("%d", b.Stats.StepReductions))
	if b.Stats.BranchSwitches > 0 {
		field("switches", fmt.Sprintf("%d", b.Stats.BranchSwitches))
	}

	if len(b.Bifurcations) == 0 {
		sb.WriteString(s.Subtle.Render("no bifurcations detected"))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(s.Title.Render(fmt.Sprintf("bifurcations (%d)", len(b.Bifurcations))))
	sb.WriteString("\n")
	for i, bp := range b.Bifurcations {
		line := fmt.Sprintf("[%d] %-12s p=%-12.6g %s", i, bp.Type, bp.Parameter, formatState(bp.State, vars))
		if bp.Period != nil {
			line += fmt.Sprintf(" period=%.4g", *bp.Period)
		}
		sb.WriteString(s.Bifurcation.Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatState(x dynamo.State, vars []string) string {
	parts := make([]string, len(x))
	for i, v := range x {
		name := fmt.Sprintf("x%d", i)
		if i < len(vars) {
			name = vars[i]
		}
		parts[i] = fmt.Sprintf("%s=%.6g", name, v)
	}
	return strings.Join(parts, " ")
}

func formatEigenvalue(e complex128) string {
	if imag(e) == 0 {
		return fmt.Sprintf("%.6g", real(e))
	}
	sign := "+"
	if imag(e) < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%.6g %s %.6gi", real(e), sign, math.Abs(imag(e)))
}
