package session

import "time"

// Stats summarizes a session. It is always derived from Results.
type Stats struct {
	TotalExercises     int
	CompletedExercises int
	CorrectAnswers     int
	TimedOut           int

	// Accuracy is a percentage in [0, 100].
	Accuracy float64

	// AverageTimePerExercise is wall time since start divided by the
	// number of completed exercises.
	AverageTimePerExercise time.Duration

	// Duration is EndTime (or now) minus StartTime.
	Duration time.Duration

	TotalPoints int
	MaxPoints   int
}

// ComputeStats derives the statistics of s. now stands in for EndTime
// while the session is running.
func ComputeStats(s Session, now time.Time) Stats {
	st := Stats{
		TotalExercises:     len(s.Exercises),
		CompletedExercises: len(s.Results),
	}

	for _, ex := range s.Exercises {
		st.MaxPoints += ex.Points
	}
	for _, r := range s.Results {
		if r.IsCorrect {
			st.CorrectAnswers++
		}
		if r.Timeout {
			st.TimedOut++
		}
		st.TotalPoints += r.Points
	}

	if !s.StartTime.IsZero() {
		end := s.EndTime
		if end.IsZero() {
			end = now
		}
		st.Duration = max(end.Sub(s.StartTime), 0)
	}

	if st.CompletedExercises > 0 {
		st.Accuracy = float64(st.CorrectAnswers) / float64(st.CompletedExercises) * 100
		st.AverageTimePerExercise = st.Duration / time.Duration(st.CompletedExercises)
	}
	return st
}
