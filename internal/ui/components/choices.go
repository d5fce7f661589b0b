package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/ui/theme"
)

// Choices is the option list of a multiple-choice exercise. Options are
// picked with their key, their position number, or the cursor and Enter.
type Choices struct {
	Keys    []string
	Options map[string]string
	Cursor  int

	// Set by Lock once the answer is scored.
	locked  bool
	chosen  string
	correct string
}

// NewChoices creates a list over keys, displayed in that order.
func NewChoices(keys []string, options map[string]string) Choices {
	return Choices{Keys: keys, Options: options}
}

// Update handles navigation. It returns the picked key, or "" when the
// message did not pick anything.
func (c Choices) Update(msg tea.Msg) (Choices, string) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || c.locked || len(c.Keys) == 0 {
		return c, ""
	}

	key := strings.ToLower(kmsg.String())
	if _, isOption := c.Options[key]; isOption {
		return c, key
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(c.Keys) {
		return c, c.Keys[n-1]
	}

	switch key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Keys)-1 {
			c.Cursor++
		}
	case "enter":
		return c, c.Keys[c.Cursor]
	}
	return c, ""
}

// Lock freezes the list and marks the chosen and correct options. Either
// may be empty.
func (c *Choices) Lock(chosen, correct string) {
	c.locked = true
	c.chosen = chosen
	c.correct = correct
}

// View renders one line per option.
func (c Choices) View() string {
	var b strings.Builder
	for i, k := range c.Keys {
		prefix := "  "
		if i == c.Cursor && !c.locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, k, c.Options[k])

		var style lipgloss.Style
		switch {
		case c.locked && k == c.correct:
			style = theme.Correct
		case c.locked && k == c.chosen:
			style = theme.Incorrect
		case c.locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == c.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
