package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for branch rendering.
type Theme struct {
	Name        string
	Primary     lipgloss.Color
	Accent      lipgloss.Color
	Text        lipgloss.Color
	Muted       lipgloss.Color
	Stable      lipgloss.Color
	Unstable    lipgloss.Color
	Bifurcation lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:        "cyberpunk",
		Primary:     lipgloss.Color("#ff00ff"),
		Accent:      lipgloss.Color("#00ffff"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#666666"),
		Stable:      lipgloss.Color("#00ff00"),
		Unstable:    lipgloss.Color("#ff8800"),
		Bifurcation: lipgloss.Color("#ffff00"),
	}

	ThemeRetroGreen = Theme{
		Name:        "retro",
		Primary:     lipgloss.Color("#00ff00"), // green phosphor
		Accent:      lipgloss.Color("#88ff88"),
		Text:        lipgloss.Color("#00ff00"),
		Muted:       lipgloss.Color("#005500"),
		Stable:      lipgloss.Color("#88ff88"),
		Unstable:    lipgloss.Color("#00aa00"),
		Bifurcation: lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:        "minimal",
		Primary:     lipgloss.Color("#ffffff"),
		Accent:      lipgloss.Color("#0088ff"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#888888"),
		Stable:      lipgloss.Color("#cccccc"),
		Unstable:    lipgloss.Color("#888888"),
		Bifurcation: lipgloss.Color("#0088ff"),
	}

	ThemeOcean = Theme{
		Name:        "ocean",
		Primary:     lipgloss.Color("#0077be"),
		Accent:      lipgloss.Color("#ffd700"),
		Text:        lipgloss.Color("#e0f0ff"),
		Muted:       lipgloss.Color("#4488aa"),
		Stable:      lipgloss.Color("#00ff88"),
		Unstable:    lipgloss.Color("#ff4444"),
		Bifurcation: lipgloss.Color("#ffd700"),
	}

	ThemeSunset = Theme{
		Name:        "sunset",
		Primary:     lipgloss.Color("#ff6b6b"),
		Accent:      lipgloss.Color("#feca57"),
		Text:        lipgloss.Color("#fff5f5"),
		Muted:       lipgloss.Color("#8b6b8c"),
		Stable:      lipgloss.Color("#5fd068"),
		Unstable:    lipgloss.Color("#ff4757"),
		Bifurcation: lipgloss.Color("#ff9ff3"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme returns the theme after t in Themes, wrapping around.
func nextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
