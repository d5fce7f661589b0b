package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/timer"
	"github.com/abhisek/linguiz/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent float64
	Suffix  string
	Width   int
	Fill    color.Color
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Suffix:  fmt.Sprintf("%d%%", int(percent*100)),
		Width:   width,
		Fill:    theme.Secondary,
	}
}

// CountdownBar shows the remaining time of a countdown. It turns amber
// below half and red in the last fifth.
func CountdownBar(s timer.State, width int) ProgressBar {
	p := s.Progress()
	fill := theme.Secondary
	switch {
	case s.Expired || p <= 0.2:
		fill = theme.Error
	case p <= 0.5:
		fill = theme.Warning
	}
	return ProgressBar{
		Label:   "⏱",
		Percent: p,
		Suffix:  fmt.Sprintf("%ds", s.Seconds()),
		Width:   width,
		Fill:    fill,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	suffixWidth := 0
	if p.Suffix != "" {
		suffixWidth = lipgloss.Width(p.Suffix) + 2
	}

	barWidth := p.Width - labelWidth - suffixWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	filled = min(max(filled, 0), barWidth)
	empty := barWidth - filled

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))

	if p.Suffix != "" {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + p.Suffix)
	}

	return result
}
