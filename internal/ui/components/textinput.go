package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/ui/theme"
)

// AnswerCharLimit caps typed answers.
const AnswerCharLimit = 120

// TextInput wraps bubbles/textinput for typed answers.
type TextInput struct {
	Model  textinput.Model
	locked bool
	valid  bool
}

// NewTextInput creates a focused input.
func NewTextInput(placeholder string) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = AnswerCharLimit
	ti.Focus()

	return TextInput{Model: ti}
}

// Update forwards messages to the input until it is locked.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.locked {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input with a verdict mark once locked.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.locked {
		if t.valid {
			view += " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		} else {
			view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Lock stops editing and records the verdict shown next to the input.
func (t *TextInput) Lock(valid bool) {
	t.locked = true
	t.valid = valid
	t.Model.Blur()
}
