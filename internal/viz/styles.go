package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const statsWidth = 44

var (
	statsStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(statsWidth)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
)

// palette holds the styles that follow the current theme.
type palette struct {
	header, water, indicator, active, muted, warn, err lipgloss.Style
}

func paletteFor(t Theme) palette {
	return palette{
		header:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		water:     lipgloss.NewStyle().Foreground(t.Water),
		indicator: lipgloss.NewStyle().Foreground(t.Indicator),
		active:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(t.Muted),
		warn:      lipgloss.NewStyle().Foreground(t.Warning),
		err:       lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// Sparkline renders the last width values as block characters.
func Sparkline(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(sparkChars)-1))
		idx = max(0, min(len(sparkChars)-1, idx))
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

func separator(width int) string {
	return strings.Repeat("─", width)
}
