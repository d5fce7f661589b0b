// Package attempt holds the per-exercise answer state machine.
//
// Transitions are computed by Reduce, a pure function over a closed set of
// actions. Machine owns one State plus the exercise countdown and is the
// only thing that mutates them.
package attempt

import (
	"time"

	"github.com/abhisek/linguiz/internal/exercise"
)

// Status is the lifecycle position of the current exercise.
type Status int

const (
	StatusInitial Status = iota
	StatusInProgress
	StatusAnswered
	StatusTimerExpired
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusInProgress:
		return "in_progress"
	case StatusAnswered:
		return "answered"
	case StatusTimerExpired:
		return "timer_expired"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// AwaitingVerification reports whether the answer is captured but not yet
// scored.
func (s Status) AwaitingVerification() bool {
	return s == StatusAnswered || s == StatusTimerExpired
}

// Verdict is the tri-state correctness of the attempt.
type Verdict int

const (
	VerdictPending Verdict = iota
	VerdictCorrect
	VerdictIncorrect
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	default:
		return "pending"
	}
}

// State is the attempt on the current exercise.
type State struct {
	ExerciseID string
	Kind       exercise.Kind
	Status     Status

	TimeLimit     time.Duration
	TimeRemaining time.Duration
	MaxPoints     int

	// Answer always holds the variant matching Kind. It is blank until
	// submission.
	Answer exercise.Answer

	Verdict       Verdict
	Points        int
	Feedback      string
	CorrectAnswer string
	Timeout       bool

	// Submitting is set while a verification call is in flight.
	Submitting bool
	// Err is the last verification failure, cleared on retry.
	Err error

	// Seq changes on every Load; replies carrying an older Seq are stale.
	Seq int
}

// Loaded reports whether an exercise has been loaded.
func (s State) Loaded() bool {
	return s.ExerciseID != ""
}

// AcceptsInput reports whether the learner may still answer.
func (s State) AcceptsInput() bool {
	return s.Status == StatusInProgress && !s.Submitting
}

// Result is the immutable record of a finished attempt.
type Result struct {
	ExerciseID string
	Kind       exercise.Kind
	Answer     exercise.Answer
	IsCorrect  bool
	Points     int
	TimeTaken  time.Duration
	Timeout    bool
}

// Result returns the attempt's result once it is completed.
func (s State) Result() (Result, bool) {
	if s.Status != StatusCompleted {
		return Result{}, false
	}
	taken := s.TimeLimit - s.TimeRemaining
	if taken < 0 {
		taken = 0
	}
	return Result{
		ExerciseID: s.ExerciseID,
		Kind:       s.Kind,
		Answer:     s.Answer,
		IsCorrect:  s.Verdict == VerdictCorrect,
		Points:     s.Points,
		TimeTaken:  taken,
		Timeout:    s.Timeout,
	}, true
}

// Request is a verification call the caller must perform and report
// back with Verified or VerifyFailed.
type Request struct {
	ExerciseID string
	Seq        int
	Answer     exercise.Answer
	Timeout    bool
}
