package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/router"
	"github.com/abhisek/linguiz/internal/screen"
	"github.com/abhisek/linguiz/internal/session"
	"github.com/abhisek/linguiz/internal/ui/layout"
	"github.com/abhisek/linguiz/internal/ui/theme"
)

// SummaryScreen displays the statistics of a finished session.
type SummaryScreen struct {
	session session.Session
	stats   session.Stats
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(s session.Session, stats session.Stats) *SummaryScreen {
	return &SummaryScreen{session: s, stats: stats}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Summary"
}

func (s *SummaryScreen) Status() string {
	return fmt.Sprintf("★ %d/%d pts", s.stats.TotalPoints, s.stats.MaxPoints)
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	st := s.stats
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder

	title := "Quiz complete!"
	if !s.session.IsComplete {
		title = "Quiz ended early"
	}
	b.WriteString(center.Foreground(theme.Primary).Bold(true).Render(title))
	b.WriteString("\n\n")

	b.WriteString(center.Foreground(theme.TextDim).Render(
		fmt.Sprintf("Duration: %s     Average: %s per exercise",
			formatDuration(st.Duration), formatDuration(st.AverageTimePerExercise))))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Completed: %d/%d     Correct: %d     Accuracy: %.0f%%     Points: %d/%d",
		st.CompletedExercises, st.TotalExercises, st.CorrectAnswers, st.Accuracy, st.TotalPoints, st.MaxPoints)
	b.WriteString(center.Foreground(theme.Text).Render(statsLine))
	b.WriteString("\n\n")

	if len(s.session.Results) == 0 {
		return b.String()
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Exercises")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for i, r := range s.session.Results {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderResult(i+1, r)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderResult renders one line of the result list.
func renderResult(n int, r attempt.Result) string {
	mark, style := "✓", theme.Correct
	switch {
	case r.Timeout:
		mark, style = "⏱", theme.TimedOut
	case !r.IsCorrect:
		mark, style = "✗", theme.Incorrect
	}

	answer := r.Answer.Text()
	if r.Answer.Blank() {
		answer = "—"
	}
	line := fmt.Sprintf("%2d. %s  %-36s  %-16s %3d pts  %s",
		n, mark, r.ExerciseID, truncate(answer, 16), r.Points, formatDuration(r.TimeTaken))
	return style.Render(line)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// formatDuration renders d as m:ss.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
