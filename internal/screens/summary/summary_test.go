package summary

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/router"
	"github.com/abhisek/linguiz/internal/session"
)

func testSession() session.Session {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return session.Session{
		ID: "s-1",
		Exercises: []*exercise.Exercise{
			{ID: "ex_1", Points: 10},
			{ID: "ex_2", Points: 15},
		},
		CurrentIndex: 2,
		Results: []attempt.Result{
			{ExerciseID: "ex_1", Kind: exercise.KindMCQ, Answer: exercise.Choice{Key: "b"}, IsCorrect: true, Points: 10, TimeTaken: 8 * time.Second},
			{ExerciseID: "ex_2", Kind: exercise.KindTextInput, Answer: exercise.Typed{}, Timeout: true, TimeTaken: 30 * time.Second},
		},
		TotalPoints: 10,
		StartTime:   start,
		EndTime:     start.Add(90 * time.Second),
		IsComplete:  true,
	}
}

func newTestScreen() *SummaryScreen {
	s := testSession()
	return New(s, session.ComputeStats(s, s.EndTime))
}

func TestSummaryScreen_Title(t *testing.T) {
	assert.Equal(t, "Summary", newTestScreen().Title())
}

func TestSummaryScreen_Display(t *testing.T) {
	view := newTestScreen().View(100, 30)

	assert.Contains(t, view, "Quiz complete!")
	assert.Contains(t, view, "Completed: 2/2")
	assert.Contains(t, view, "Correct: 1")
	assert.Contains(t, view, "Accuracy: 50%")
	assert.Contains(t, view, "Points: 10/25")
	assert.Contains(t, view, "Duration: 1:30")
	assert.Contains(t, view, "Average: 0:45")
	assert.Contains(t, view, "ex_1")
	assert.Contains(t, view, "ex_2")
}

func TestSummaryScreen_EndedEarly(t *testing.T) {
	s := testSession()
	s.IsComplete = false
	s.EndTime = time.Time{}
	s.CurrentIndex = 1
	s.Results = s.Results[:1]
	view := New(s, session.ComputeStats(s, s.StartTime.Add(time.Minute))).View(100, 30)

	assert.Contains(t, view, "Quiz ended early")
	assert.Contains(t, view, "Completed: 1/2")
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []tea.KeyPressMsg{
		{Code: tea.KeyEnter},
		{Code: tea.KeyEscape},
	} {
		_, cmd := newTestScreen().Update(key)
		require.NotNil(t, cmd)
		assert.Equal(t, router.PopScreenMsg{}, cmd())
	}
}

func TestSummaryScreen_Status(t *testing.T) {
	assert.Equal(t, "★ 10/25 pts", newTestScreen().Status())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "1:05", formatDuration(65*time.Second))
	assert.Equal(t, "0:09", formatDuration(8600*time.Millisecond))
}
