package quiz

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/session"
	"github.com/abhisek/linguiz/internal/ui/components"
	"github.com/abhisek/linguiz/internal/ui/theme"
	"github.com/abhisek/linguiz/internal/verify"
)

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

// renderExercise renders the current exercise, its countdown and, once
// answered, the verdict.
func (s *QuizScreen) renderExercise(ex *exercise.Exercise, width, height int) string {
	sess := s.tracker.Session()
	st := s.machine.State()

	var b strings.Builder

	// Position and tags.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Exercise %d/%d", sess.CurrentIndex+1, len(sess.Exercises)))

	tags := []string{ex.Category}
	if ex.Subcategory != "" {
		tags = append(tags, ex.Subcategory)
	}
	tags = append(tags, string(ex.Level), fmt.Sprintf("%d pts", ex.Points))
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(strings.Join(tags, " · "))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.CountdownBar(s.machine.Timer(), barWidth).View()))
	b.WriteString("\n\n")

	b.WriteString(centered(width).Inherit(theme.Hint).Render(ex.Instruction))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Render(s.renderSentence()))
	b.WriteString("\n\n")

	switch st.Kind {
	case exercise.KindMCQ:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	case exercise.KindTextInput:
		b.WriteString(centered(width).Render("Answer: " + s.input.View()))
		b.WriteString("\n")
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(centered(width).Foreground(theme.Warning).Render(s.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderStatus(st, width))
	return b.String()
}

// renderSentence shows the sentence with its blank highlighted.
func (s *QuizScreen) renderSentence() string {
	body := theme.Body.Bold(true)
	if !s.gap.Found {
		return body.Render(s.gap.Before)
	}
	blank := exercise.BlankMarker
	if s.gap.Hint != "" {
		blank = "[" + s.gap.Hint + "]"
	}
	return body.Render(s.gap.Before) + theme.Blank.Render(blank) + body.Render(s.gap.After)
}

// renderStatus shows what happens to the submitted answer.
func renderStatus(st attempt.State, width int) string {
	switch {
	case st.Submitting:
		return centered(width).Foreground(theme.TextDim).Render("Checking…")

	case st.Err != nil && !verify.IsRetryable(st.Err):
		return centered(width).Foreground(theme.Error).Render("This answer cannot be checked: "+errorText(st.Err)) +
			"\n\n" +
			centered(width).Foreground(theme.Primary).Bold(true).Render("[S] Skip")

	case st.Err != nil:
		return centered(width).Foreground(theme.Error).Render("Could not check your answer: "+errorText(st.Err)) +
			"\n\n" +
			centered(width).Foreground(theme.Primary).Bold(true).Render("[R] Retry")

	case st.Status == attempt.StatusCompleted:
		return renderFeedback(st, width)
	}
	return ""
}

// renderFeedback renders the verdict panel.
func renderFeedback(st attempt.State, width int) string {
	var b strings.Builder

	switch {
	case st.Timeout:
		b.WriteString(theme.TimedOut.Render("Time's up!"))
	case st.Verdict == attempt.VerdictCorrect:
		b.WriteString(theme.Correct.Render(fmt.Sprintf("Correct!  +%d pts", st.Points)))
	default:
		b.WriteString(theme.Incorrect.Render("Not quite"))
	}

	if st.Verdict != attempt.VerdictCorrect && st.CorrectAnswer != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render("Correct answer: " + st.CorrectAnswer))
	}
	if st.Feedback != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(st.Feedback))
	}

	border := theme.Error
	switch {
	case st.Timeout:
		border = theme.Warning
	case st.Verdict == attempt.VerdictCorrect:
		border = theme.Success
	}
	card := components.Card(b.String(), min(width-8, 70), border)

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, card) +
		"\n\n" +
		centered(width).Foreground(theme.TextDim).Render("Press any key to continue...")
}

func errorText(err error) string {
	var le *session.LoadError
	if errors.As(err, &le) {
		err = le.Err
	}
	msg := err.Error()
	if len(msg) > 120 {
		msg = msg[:117] + "..."
	}
	return msg
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height, answered int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render("End quiz early?"))
	b.WriteString("\n")
	note := "Nothing has been answered yet."
	if answered > 0 {
		note = fmt.Sprintf("You will see the summary of your %d answered exercise(s).", answered)
	}
	b.WriteString(centered(width).Foreground(theme.TextDim).Render(note))
	b.WriteString("\n\n")

	b.WriteString(centered(width).Foreground(theme.Success).Render("[Y] Yes, end quiz"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.Primary).Render("[N] No, keep going"))

	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return centered(width).
		Foreground(theme.TextDim).
		Render("\n\n\n  Loading exercises...")
}

// renderLoadError renders a failed fetch with its retry affordance.
func renderLoadError(width, height int, err error) string {
	msg := "Could not load exercises: " + errorText(err)
	if errors.Is(err, session.ErrNoExercises) {
		msg = "No exercises match this selection."
	}
	return centered(width).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  %s\n\n  [R] Retry   [Esc] Back", msg))
}
