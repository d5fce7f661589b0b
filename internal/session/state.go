package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/exercise"
)

var (
	ErrNoExercises     = errors.New("no exercises available")
	ErrNotStarted      = errors.New("session not started")
	ErrComplete        = errors.New("session already complete")
	ErrDuplicateResult = errors.New("result already recorded for this exercise")
	ErrResultMismatch  = errors.New("result does not belong to the current exercise")
)

// Session is one quiz run over a fixed, ordered list of exercises.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Exercises is fixed when the session starts.
	Exercises []*exercise.Exercise

	// CurrentIndex is the 0-based position of the current exercise. It only
	// moves forward.
	CurrentIndex int

	// Results is append-only, at most one per exercise.
	Results []attempt.Result

	// TotalPoints is the sum of result points.
	TotalPoints int

	// StartTime is when the session began.
	StartTime time.Time

	// EndTime is set when the last exercise is passed; zero until then.
	EndTime time.Time

	// IsComplete becomes true once CurrentIndex moves past the last
	// exercise.
	IsComplete bool
}

// Started reports whether the session has exercises.
func (s Session) Started() bool {
	return len(s.Exercises) > 0
}

// Current returns the exercise being played, or nil.
func (s Session) Current() *exercise.Exercise {
	if s.IsComplete || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Exercises) {
		return nil
	}
	return s.Exercises[s.CurrentIndex]
}

// Action is the closed set of session transitions.
type Action interface {
	isAction()
}

// Start begins a session.
type Start struct {
	ID        string
	Exercises []*exercise.Exercise
}

// Record appends the result of the current exercise.
type Record struct {
	Result attempt.Result
}

// Advance moves to the next exercise.
type Advance struct{}

// Reset discards the session.
type Reset struct{}

func (Start) isAction()   {}
func (Record) isAction()  {}
func (Advance) isAction() {}
func (Reset) isAction()   {}

// Reduce applies a to s at time now. On error the returned session
// equals s.
func Reduce(s Session, a Action, now time.Time) (Session, error) {
	switch a := a.(type) {
	case Start:
		if len(a.Exercises) == 0 {
			return s, ErrNoExercises
		}
		return Session{
			ID:        a.ID,
			Exercises: append([]*exercise.Exercise(nil), a.Exercises...),
			StartTime: now,
		}, nil

	case Record:
		if !s.Started() {
			return s, ErrNotStarted
		}
		if s.IsComplete {
			return s, ErrComplete
		}
		if len(s.Results) != s.CurrentIndex {
			return s, fmt.Errorf("%w: index %d has %d results", ErrDuplicateResult, s.CurrentIndex, len(s.Results))
		}
		if cur := s.Current(); a.Result.ExerciseID != cur.ID {
			return s, fmt.Errorf("%w: got %s, current is %s", ErrResultMismatch, a.Result.ExerciseID, cur.ID)
		}
		s.Results = append(append([]attempt.Result(nil), s.Results...), a.Result)
		s.TotalPoints += a.Result.Points
		return s, nil

	case Advance:
		if !s.Started() {
			return s, ErrNotStarted
		}
		if s.IsComplete {
			return s, ErrComplete
		}
		s.CurrentIndex++
		if s.CurrentIndex >= len(s.Exercises) {
			s.IsComplete = true
			s.EndTime = now
		}
		return s, nil

	case Reset:
		return Session{}, nil
	}
	return s, fmt.Errorf("unknown session action %T", a)
}
