package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/ui/theme"
)

const titleFull = ` ██╗     ██╗███╗   ██╗ ██████╗ ██╗   ██╗██╗███████╗
 ██║     ██║████╗  ██║██╔════╝ ██║   ██║██║╚══███╔╝
 ██║     ██║██╔██╗ ██║██║  ███╗██║   ██║██║  ███╔╝
 ██║     ██║██║╚██╗██║██║   ██║██║   ██║██║ ███╔╝
 ███████╗██║██║ ╚████║╚██████╔╝╚██████╔╝██║███████╗
 ╚══════╝╚═╝╚═╝  ╚═══╝ ╚═════╝  ╚═════╝ ╚═╝╚══════╝`

const titleCompact = "L · I · N · G · U · I · Z"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	title := lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))

	sub := lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Italic(true).
		Render("French grammar, one blank at a time")
	return title + "\n" + sub
}

// renderSourceBar shows where exercises come from and which are selected,
// in a bordered box matching content width.
func renderSourceBar(source string, filter exercise.Filter, health healthState, cw int, compact bool) string {
	label := lipgloss.NewStyle().Foreground(theme.TextDim)
	value := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)

	category := filter.Category
	if category == "" {
		category = "all"
	}
	level := string(filter.Level)
	if level == "" {
		level = "all"
	}
	limit := "default"
	if filter.Limit > 0 {
		limit = fmt.Sprintf("%d", filter.Limit)
	}

	sep := "   "
	if compact {
		sep = " "
	}
	lines := []string{
		label.Render("Source ") + value.Render(source) + " " + health.render(),
		strings.Join([]string{
			label.Render("Category ") + value.Render(category),
			label.Render("Level ") + value.Render(level),
			label.Render("Exercises ") + value.Render(limit),
		}, sep),
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (h healthState) render() string {
	switch {
	case h.checking:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("…")
	case h.err != nil:
		return lipgloss.NewStyle().Foreground(theme.Error).Render("● unreachable")
	case h.checked:
		return lipgloss.NewStyle().Foreground(theme.Success).Render("● online")
	}
	return ""
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenuCompact renders menu items as plain lines for terminals where
// bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		var line string
		if i == selected {
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Bold(true).
				Render(" ▸ " + label + " ")
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderHealthBanner warns that the verification service cannot be reached.
func renderHealthBanner(err error, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + err.Error())
}
