package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/bifsim/internal/cont"
	"github.com/san-kum/bifsim/internal/dynamo"
)

type SVGOptions struct {
	Width, Height int

	Background string
	Stable     string
	Unstable   string
	Marker     string

	// Label names the plotted component on the vertical axis.
	Label string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      640,
		Height:     400,
		Background: "#0a0a0a",
		Stable:     "#00ff00",
		Unstable:   "#ff5555",
		Marker:     "#ffd700",
	}
}

const svgMargin = 40.0

// BranchSVG writes a bifurcation diagram of b: the parameter on the
// horizontal axis against state component on the vertical one. Stable
// stretches are solid, unstable ones dashed, and every detected
// bifurcation gets a labelled marker.
func BranchSVG(w io.Writer, b *cont.Branch, component int, o SVGOptions) error {
	if b == nil || b.Len() < 2 {
		return errors.New("need at least two points to draw a branch")
	}
	if component < 0 || component >= len(b.Points[0].State) {
		return fmt.Errorf("component %d of %d: %w", component, len(b.Points[0].State), dynamo.ErrDimensionMismatch)
	}

	minX, maxX := b.Points[0].Parameter, b.Points[0].Parameter
	minY, maxY := b.Points[0].State[component], b.Points[0].State[component]
	for _, pt := range b.Points {
		minX, maxX = min(minX, pt.Parameter), max(maxX, pt.Parameter)
		minY, maxY = min(minY, pt.State[component]), max(maxY, pt.State[component])
	}

	loP, hiP := minX, maxX

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	minY -= rangeY * 0.05
	rangeX *= 1.1
	rangeY *= 1.1

	plotW := float64(o.Width) - 2*svgMargin
	plotH := float64(o.Height) - 2*svgMargin
	project := func(p, v float64) (float64, float64) {
		x := svgMargin + (p-minX)/rangeX*plotW
		y := svgMargin + plotH - (v-minY)/rangeY*plotH
		return x, y
	}

	label := o.Label
	if label == "" {
		label = fmt.Sprintf("x%d", component)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, o.Width, o.Height, o.Width, o.Height, o.Background))

	sb.WriteString(fmt.Sprintf(`<g stroke="#888888" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
`, svgMargin, svgMargin+plotH, svgMargin+plotW, svgMargin+plotH,
		svgMargin, svgMargin, svgMargin, svgMargin+plotH))

	sb.WriteString(fmt.Sprintf(`<g fill="#888888" font-family="monospace" font-size="12">
<text x="%.1f" y="%.1f">%s</text>
<text x="%.1f" y="%.1f">%s</text>
<text x="%.1f" y="%.1f">%.4g</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.4g</text>
</g>
`, svgMargin+plotW/2, float64(o.Height)-8, escape(b.Name),
		4.0, svgMargin-8, escape(label),
		svgMargin, svgMargin+plotH+16, loP,
		svgMargin+plotW, svgMargin+plotH+16, hiP))

	for _, run := range stabilityRuns(b) {
		color, dash := o.Stable, ""
		if !b.Points[run[0]].Stable {
			color, dash = o.Unstable, ` stroke-dasharray="6,4"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, color, dash))
		for i := run[0]; i <= run[1]; i++ {
			x, y := project(b.Points[i].Parameter, b.Points[i].State[component])
			if i == run[0] {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, bp := range b.Bifurcations {
		if component >= len(bp.State) {
			continue
		}
		x, y := project(bp.Parameter, bp.State[component])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="%s"><title>%s at p=%.6g</title></circle>
`, x, y, o.Marker, bp.Type, bp.Parameter))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// stabilityRuns splits the point indices into maximal runs of equal
// stability. Consecutive runs share their boundary point so the drawn
// segments join.
func stabilityRuns(b *cont.Branch) [][2]int {
	var runs [][2]int
	start := 0
	for i := 1; i < b.Len(); i++ {
		if b.Points[i].Stable != b.Points[start].Stable {
			runs = append(runs, [2]int{start, i})
			start = i
		}
	}
	if start < b.Len()-1 || len(runs) == 0 {
		runs = append(runs, [2]int{start, b.Len() - 1})
	}
	return runs
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return svgEscaper.Replace(s) }
