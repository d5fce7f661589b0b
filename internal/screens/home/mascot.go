package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle    MascotVariant = iota // Default blue
	MascotWaiting                      // Dim, while the server is checked
	MascotAlert                        // Orange, exclamation: server unreachable
)

const mascotIdle = `  ▄▄▄▄
┌─────┐
│ ◉ ◉ │
│  ▽  │
│ àéç │
└─────┘`

const mascotWaiting = `  ▄▄▄▄
┌─────┐
│ - - │
│  ▽  │
│ ... │
└─────┘`

const mascotAlert = `  ▄▄▄▄
┌─────┐
│ ◉ ◉ │ !
│  ○  │
│ àéç │
└─────┘`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary

	switch v {
	case MascotWaiting:
		art = mascotWaiting
		fg = theme.TextDim
	case MascotAlert:
		art = mascotAlert
		fg = theme.Warning
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}

// renderMascotBox renders the mascot centered at content width.
func renderMascotBox(v MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(v))
}
