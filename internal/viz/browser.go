package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/bifsim/internal/cont"
)

// chromeLines is the number of view lines outside the point table.
const chromeLines = 16

// Browser is a Bubble Tea model for stepping through the points of a branch.
type Browser struct {
	title  string
	branch *cont.Branch
	vars   []string

	cursor, offset int
	width, height  int

	theme  Theme
	styles Styles

	// maxRe is the largest real eigenvalue part at each point.
	maxRe []float64
}

func NewBrowser(title string, b *cont.Branch, vars []string) Browser {
	maxRe := make([]float64, b.Len())
	for i, pt := range b.Points {
		maxRe[i] = math.Inf(-1)
		for _, e := range pt.Eigenvalues {
			maxRe[i] = max(maxRe[i], real(e))
		}
		if len(pt.Eigenvalues) == 0 {
			maxRe[i] = 0
		}
	}
	return Browser{
		title:  title,
		branch: b,
		vars:   vars,
		width:  80,
		height: 30,
		theme:  Themes[0],
		styles: NewStyles(Themes[0]),
		maxRe:  maxRe,
	}
}

// WithTheme returns a copy of m using the named theme.
func (m Browser) WithTheme(name string) Browser {
	m.theme = GetTheme(name)
	m.styles = NewStyles(m.theme)
	return m
}

func (m Browser) Cursor() int { return m.cursor }

func (m Browser) Theme() Theme { return m.theme }

func (m Browser) Init() tea.Cmd { return nil }

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scroll()
	}
	return m, nil
}

func (m Browser) handleKey(msg tea.KeyMsg) (Browser, tea.Cmd) {
	n := m.branch.Len()
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= m.pageSize()
	case "pgdown", " ":
		m.cursor += m.pageSize()
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = n - 1
	case "n":
		for _, bp := range m.branch.Bifurcations {
			if bp.Index > m.cursor {
				m.cursor = bp.Index
				break
			}
		}
	case "N":
		for i := len(m.branch.Bifurcations) - 1; i >= 0; i-- {
			if idx := m.branch.Bifurcations[i].Index; idx < m.cursor {
				m.cursor = idx
				break
			}
		}
	case "t":
		m.theme = nextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	}
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	m.scroll()
	return m, nil
}

func (m Browser) pageSize() int {
	return max(m.height-chromeLines, 5)
}

// scroll moves the window so the cursor row is visible.
func (m *Browser) scroll() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
}

func (m Browser) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render(m.title))
	b.WriteString(s.Subtle.Render(fmt.Sprintf("  %s branch · %d points · %d bifurcations · theme %s",
		m.branch.Name, m.branch.Len(), len(m.branch.Bifurcations), m.theme.Name)))
	b.WriteString("\n\n")

	if m.branch.Len() == 0 {
		b.WriteString(s.Subtle.Render("no points"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(s.Label.Render(m.header()))
	b.WriteString("\n")
	end := min(m.offset+m.pageSize(), m.branch.Len())
	for i := m.offset; i < end; i++ {
		pt := m.branch.Points[i]
		row := m.row(i, pt)
		if i == m.cursor {
			b.WriteString(s.Selected.Render("> " + row))
		} else {
			b.WriteString(s.Point(pt).Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString(s.Subtle.Render(Separator(min(m.width, 80))))
	b.WriteString("\n")
	b.WriteString(s.Panel.Render(m.detail(m.branch.Points[m.cursor])))
	b.WriteString("\n")

	width := min(max(m.width-20, 10), 60)
	b.WriteString(s.Label.Render("max Re λ  "))
	b.WriteString(s.Value.Render(Sparkline(m.maxRe, width)))
	b.WriteString("\n")
	b.WriteString(s.Label.Render("position  "))
	b.WriteString(s.Value.Render(ProgressBar(float64(m.cursor+1)/float64(m.branch.Len()), width)))
	b.WriteString("\n\n")

	b.WriteString(s.KeyHint.Render("j/k move · pgup/pgdn page · g/G ends · n/N bifurcations · t theme · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Browser) header() string {
	cols := []string{fmt.Sprintf("  %5s", "#"), fmt.Sprintf("%12s", "p")}
	for i := range m.branch.Points[0].State {
		name := fmt.Sprintf("x%d", i)
		if i < len(m.vars) {
			name = m.vars[i]
		}
		cols = append(cols, fmt.Sprintf("%12s", name))
	}
	cols = append(cols, fmt.Sprintf("%-15s", "type"), "bifurcation")
	return strings.Join(cols, " ")
}

func (m Browser) row(i int, pt cont.SolutionPoint) string {
	cols := []string{fmt.Sprintf("%5d", i), fmt.Sprintf("%12.6g", pt.Parameter)}
	for _, v := range pt.State {
		cols = append(cols, fmt.Sprintf("%12.6g", v))
	}
	bif := ""
	if pt.Bifurcation != cont.Regular {
		bif = pt.Bifurcation.String()
	}
	cols = append(cols, fmt.Sprintf("%-15s", pt.Type), bif)
	return strings.Join(cols, " ")
}

func (m Browser) detail(pt cont.SolutionPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "point %d  p=%.8g  %s\n", m.cursor, pt.Parameter, formatState(pt.State, m.vars))

	stability := "unstable"
	if pt.Stable {
		stability = "stable"
	}
	fmt.Fprintf(&b, "%s %s  arclength=%.6g  residual=%.3g\n", stability, pt.Type, pt.Arclength, pt.Residual)

	eigs := make([]string, len(pt.Eigenvalues))
	for i, e := range pt.Eigenvalues {
		eigs[i] = formatEigenvalue(e)
	}
	fmt.Fprintf(&b, "eigenvalues: %s", strings.Join(eigs, ", "))

	if pt.Bifurcation != cont.Regular {
		fmt.Fprintf(&b, "\n%s", pt.Bifurcation)
		for _, bp := range m.branch.Bifurcations {
			if bp.Index == m.cursor && bp.Period != nil {
				fmt.Fprintf(&b, "  period=%.6g", *bp.Period)
			}
		}
	}
	return b.String()
}
