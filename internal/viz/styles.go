package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bifsim/internal/cont"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Subtle      lipgloss.Style
	KeyHint     lipgloss.Style
	Stable      lipgloss.Style
	Unstable    lipgloss.Style
	Bifurcation lipgloss.Style
	Selected    lipgloss.Style
	Panel       lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted),
		Value: lipgloss.NewStyle().
			Foreground(t.Text).
			Bold(true),
		Subtle: lipgloss.NewStyle().
			Foreground(t.Muted),
		KeyHint: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),
		Stable: lipgloss.NewStyle().
			Foreground(t.Stable),
		Unstable: lipgloss.NewStyle().
			Foreground(t.Unstable),
		Bifurcation: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Bifurcation),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
	}
}

// Point returns the style for a row showing pt.
func (s Styles) Point(pt cont.SolutionPoint) lipgloss.Style {
	switch {
	case pt.Bifurcation != cont.Regular:
		return s.Bifurcation
	case pt.Stable:
		return s.Stable
	default:
		return s.Unstable
	}
}

// ProgressBar renders the fraction done as a bar of the given width.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders values as block characters, sampled to fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		idx := int((values[i*step] - lo) / rng * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}

// Separator renders a decorated horizontal rule.
func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return left + " ◆ " + right
}
