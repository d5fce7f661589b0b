package attempt

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/verify"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in
	// the current status, including the loser of a submit/expiry race.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStale is returned for a verification reply that belongs to
	// another exercise or an earlier load.
	ErrStale = errors.New("stale verification reply")

	// ErrAnswerKind is returned when the answer variant does not match
	// the exercise type.
	ErrAnswerKind = errors.New("answer does not match exercise type")

	// ErrDeadlinePassed rejects a submission made after the time limit.
	// The attempt is expired in its place.
	ErrDeadlinePassed = fmt.Errorf("%w: time limit reached", ErrInvalidTransition)
)

// Action is the closed set of inputs to Reduce.
type Action interface {
	actionName() string
}

// Load starts a new attempt on an exercise. Allowed from any status.
type Load struct {
	Exercise *exercise.Exercise
}

// Tick reports the countdown's current remaining time.
type Tick struct {
	Remaining time.Duration
}

// Submit is a learner answer.
type Submit struct {
	Answer exercise.Answer
}

// Expire is the countdown reaching zero.
type Expire struct{}

// Verified carries the service verdict for a Request.
type Verified struct {
	ExerciseID string
	Seq        int
	Outcome    verify.Outcome
}

// VerifyFailed carries a failed verification call for a Request.
type VerifyFailed struct {
	ExerciseID string
	Seq        int
	Err        error
}

// Retry resends the captured answer after a failed verification.
type Retry struct{}

func (Load) actionName() string         { return "load" }
func (Tick) actionName() string         { return "tick" }
func (Submit) actionName() string       { return "submit" }
func (Expire) actionName() string       { return "expire" }
func (Verified) actionName() string     { return "verified" }
func (VerifyFailed) actionName() string { return "verify_failed" }
func (Retry) actionName() string        { return "retry" }

// Reduce applies a to s. On error the returned state equals s. A non-nil
// Request means a verification call must be made.
func Reduce(s State, a Action) (State, *Request, error) {
	switch a := a.(type) {
	case Load:
		return reduceLoad(s, a)
	case Tick:
		return reduceTick(s, a), nil, nil
	case Submit:
		return reduceSubmit(s, a)
	case Expire:
		return reduceExpire(s)
	case Verified:
		return reduceVerified(s, a)
	case VerifyFailed:
		return reduceVerifyFailed(s, a)
	case Retry:
		return reduceRetry(s)
	default:
		return s, nil, fmt.Errorf("%w: unknown action %T", ErrInvalidTransition, a)
	}
}

func reduceLoad(s State, a Load) (State, *Request, error) {
	if a.Exercise == nil {
		return s, nil, fmt.Errorf("%w: load without exercise", ErrInvalidTransition)
	}
	if err := a.Exercise.Validate(); err != nil {
		return s, nil, err
	}

	kind := a.Exercise.Kind()
	next := State{
		ExerciseID:    a.Exercise.ID,
		Kind:          kind,
		Status:        StatusInitial,
		TimeLimit:     a.Exercise.Limit(),
		TimeRemaining: a.Exercise.Limit(),
		MaxPoints:     a.Exercise.Points,
		Answer:        exercise.EmptyAnswer(kind),
		Verdict:       VerdictPending,
		Seq:           s.Seq + 1,
	}
	next.Status = StatusInProgress
	return next, nil, nil
}

func reduceTick(s State, a Tick) State {
	if s.Status != StatusInProgress {
		return s
	}
	remaining := max(a.Remaining, 0)
	if remaining < s.TimeRemaining {
		s.TimeRemaining = remaining
	}
	return s
}

func reduceSubmit(s State, a Submit) (State, *Request, error) {
	if s.Status != StatusInProgress || s.Submitting {
		return s, nil, rejected(s, a)
	}
	if a.Answer == nil || a.Answer.Kind() != s.Kind {
		return s, nil, fmt.Errorf("%w: got %T for %s", ErrAnswerKind, a.Answer, s.Kind)
	}

	s.Status = StatusAnswered
	s.Answer = a.Answer
	s.Submitting = true
	s.Err = nil
	return s, &Request{ExerciseID: s.ExerciseID, Seq: s.Seq, Answer: s.Answer}, nil
}

func reduceExpire(s State) (State, *Request, error) {
	if s.Status != StatusInProgress || s.Submitting {
		return s, nil, rejected(s, Expire{})
	}

	s.Status = StatusTimerExpired
	s.TimeRemaining = 0
	s.Answer = exercise.EmptyAnswer(s.Kind)
	s.Submitting = true
	s.Err = nil
	return s, &Request{ExerciseID: s.ExerciseID, Seq: s.Seq, Answer: s.Answer, Timeout: true}, nil
}

func reduceVerified(s State, a Verified) (State, *Request, error) {
	if a.ExerciseID != s.ExerciseID || a.Seq != s.Seq {
		return s, nil, fmt.Errorf("%w: %s#%d while on %s#%d", ErrStale, a.ExerciseID, a.Seq, s.ExerciseID, s.Seq)
	}
	if !s.Status.AwaitingVerification() || !s.Submitting {
		return s, nil, rejected(s, a)
	}

	out := a.Outcome
	s.Submitting = false
	s.Err = nil
	s.Feedback = out.Feedback
	s.CorrectAnswer = out.CorrectAnswer

	if s.Status == StatusTimerExpired {
		// A timeout never scores, whatever the service says.
		s.Verdict = VerdictIncorrect
		s.Points = 0
		s.Timeout = true
	} else {
		s.Timeout = out.IsTimeout
		if out.IsCorrect {
			s.Verdict = VerdictCorrect
			s.Points = min(max(out.Points, 0), s.MaxPoints)
		} else {
			s.Verdict = VerdictIncorrect
			s.Points = 0
		}
	}

	s.Status = StatusCompleted
	return s, nil, nil
}

func reduceVerifyFailed(s State, a VerifyFailed) (State, *Request, error) {
	if a.ExerciseID != s.ExerciseID || a.Seq != s.Seq {
		return s, nil, fmt.Errorf("%w: %s#%d while on %s#%d", ErrStale, a.ExerciseID, a.Seq, s.ExerciseID, s.Seq)
	}
	if !s.Status.AwaitingVerification() || !s.Submitting {
		return s, nil, rejected(s, a)
	}

	s.Submitting = false
	s.Err = a.Err
	if s.Err == nil {
		s.Err = errors.New("verification failed")
	}
	return s, nil, nil
}

func reduceRetry(s State) (State, *Request, error) {
	if !s.Status.AwaitingVerification() || s.Submitting || s.Err == nil {
		return s, nil, rejected(s, Retry{})
	}

	s.Submitting = true
	s.Err = nil
	return s, &Request{
		ExerciseID: s.ExerciseID,
		Seq:        s.Seq,
		Answer:     s.Answer,
		Timeout:    s.Status == StatusTimerExpired,
	}, nil
}

func rejected(s State, a Action) error {
	detail := s.Status.String()
	if s.Submitting {
		detail += ", submitting"
	}
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, a.actionName(), detail)
}
