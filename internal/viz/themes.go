package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the color scheme of the live view.
type Theme struct {
	Name      string
	Water     lipgloss.Color
	Indicator lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	// slider gradient
	BarFrom, BarTo string
}

var (
	ThemeOcean = Theme{
		Name:      "ocean",
		Water:     lipgloss.Color("#0077be"),
		Indicator: lipgloss.Color("#e0f0ff"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
		BarFrom:   "#00a8cc",
		BarTo:     "#0077be",
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Water:     lipgloss.Color("#00ffff"),
		Indicator: lipgloss.Color("#ff00ff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Warning:   lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
		BarFrom:   "#ff00ff",
		BarTo:     "#00ffff",
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Water:     lipgloss.Color("#00cc00"), // green phosphor
		Indicator: lipgloss.Color("#88ff88"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
		BarFrom:   "#005500",
		BarTo:     "#00ff00",
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Water:     lipgloss.Color("#cccccc"),
		Indicator: lipgloss.Color("#0088ff"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Warning:   lipgloss.Color("#ffaa00"),
		Error:     lipgloss.Color("#ff0000"),
		BarFrom:   "#888888",
		BarTo:     "#ffffff",
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Water:     lipgloss.Color("#ff6b6b"),
		Indicator: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Warning:   lipgloss.Color("#ffc048"),
		Error:     lipgloss.Color("#ff4757"),
		BarFrom:   "#feca57",
		BarTo:     "#ff6b6b",
	}

	CurrentTheme = ThemeOcean

	Themes = []Theme{
		ThemeOcean,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to ocean.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
