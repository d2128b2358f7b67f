package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/selfassess/internal/ui/theme"
)

// ProgressBar displays a horizontal bar for a fraction between 0 and 1.
type ProgressBar struct {
	Label    string
	Fraction float64
	Suffix   string
	Width    int
}

// NewProgressBar creates a progress bar for done out of total.
func NewProgressBar(label string, done, total, width int) ProgressBar {
	var f float64
	if total > 0 {
		f = float64(done) / float64(total)
	}
	return ProgressBar{
		Label:    label,
		Fraction: f,
		Suffix:   fmt.Sprintf("%d/%d", done, total),
		Width:    width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	suffix := ""
	if p.Suffix != "" {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + p.Suffix)
	}

	barWidth := max(p.Width-lipgloss.Width(result)-lipgloss.Width(suffix), 4)
	filled := min(max(int(float64(barWidth)*p.Fraction), 0), barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	return result + suffix
}
