// Package layout draws the frame every screen is rendered into: a title
// bar, the screen body and a bar of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/ui/theme"
)

// The quiz card, the countdown bar and four MCQ options need this much
// room.
const (
	MinWidth  = 80
	MinHeight = 24
)

const brand = "Linguiz"

// KeyHint is one key binding listed in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	return theme.Selected.Render("["+h.Key+"]") + " " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
}

// IsTooSmall reports whether the terminal cannot hold a quiz screen.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Warning).Render(fmt.Sprintf(
			"%s needs at least %d×%d\n\nnow %d×%d",
			brand, MinWidth, MinHeight, width, height,
		)),
	)
}

// bar wraps one line of content in the card border shared by header and
// footer.
func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// inner is the text width left inside a bar.
func inner(width int) int {
	return max(width-4, 0)
}

// RenderHeader shows the brand and screen title on the left and status,
// usually the running score, on the right.
func RenderHeader(title, status string, width int) string {
	left := theme.Title.Render(brand)
	if title != "" {
		left += lipgloss.NewStyle().Foreground(theme.TextDim).Render(" · ") +
			lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	}
	right := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(status)

	gap := inner(width) - lipgloss.Width(left) - lipgloss.Width(right)
	return bar(left+strings.Repeat(" ", max(gap, 1))+right, width)
}

// RenderFooter lists hints as "[Key] Description". The last hint is the
// global one and always stays; hints before it are dropped from the end
// until the rest fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	const sep = "  "
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = h.render()
	}
	for len(parts) > 1 && lipgloss.Width(strings.Join(parts, sep)) > inner(width) {
		parts = append(parts[:len(parts)-2], parts[len(parts)-1])
	}
	return bar(strings.Join(parts, sep), width)
}

// RenderFrame stacks header, body and footer into exactly height lines.
// body is called with the space left between the bars.
func RenderFrame(header, footer string, width, height int, body func(width, height int) string) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body(width, bodyHeight))
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}
