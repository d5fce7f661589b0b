package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/exercise"
)

// ExerciseStore supplies the exercises for a session. Answer keys are not
// expected.
type ExerciseStore interface {
	FetchExercises(ctx context.Context, filter exercise.Filter) ([]*exercise.Exercise, error)
}

// LoadError is a failed or empty exercise fetch. No session starts.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading exercises: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Fetch loads and validates the exercises for a new session. Any failure,
// including an empty list or a malformed exercise, is a *LoadError.
func Fetch(ctx context.Context, store ExerciseStore, filter exercise.Filter) ([]*exercise.Exercise, error) {
	exs, err := store.FetchExercises(ctx, filter)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	if len(exs) == 0 {
		return nil, &LoadError{Err: ErrNoExercises}
	}

	var malformed []error
	for _, ex := range exs {
		if ex == nil {
			malformed = append(malformed, fmt.Errorf("%w: nil entry", exercise.ErrMalformed))
			continue
		}
		if err := ex.Validate(); err != nil {
			malformed = append(malformed, err)
		}
	}
	if len(malformed) > 0 {
		return nil, &LoadError{Err: errors.Join(malformed...)}
	}
	return exs, nil
}

// Tracker owns the session for one quiz run. Like attempt.Machine it is
// driven from a single goroutine.
type Tracker struct {
	session Session
	clock   func() time.Time
	logger  *slog.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.clock = now }
}

// WithLogger sets the tracker's logger.
func WithLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates an idle Tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) apply(a Action) error {
	next, err := Reduce(t.session, a, t.clock())
	if err != nil {
		return err
	}
	t.session = next
	return nil
}

// Start begins a session over exercises.
func (t *Tracker) Start(exercises []*exercise.Exercise) error {
	if err := t.apply(Start{ID: uuid.New().String(), Exercises: exercises}); err != nil {
		return err
	}
	t.logger = t.logger.With("session_id", t.session.ID)
	t.logger.Info("session started", "exercises", len(exercises))
	return nil
}

// RecordResult appends the current exercise's result.
func (t *Tracker) RecordResult(r attempt.Result) error {
	if err := t.apply(Record{Result: r}); err != nil {
		t.logger.Error("result rejected", "exercise_id", r.ExerciseID, "error", err)
		return err
	}
	t.logger.Info("result recorded",
		"exercise_id", r.ExerciseID,
		"correct", r.IsCorrect,
		"points", r.Points,
		"timeout", r.Timeout,
		"time_taken_ms", r.TimeTaken.Milliseconds())
	return nil
}

// Advance moves to the next exercise and reports whether the session is
// now complete.
func (t *Tracker) Advance() (bool, error) {
	if err := t.apply(Advance{}); err != nil {
		return t.session.IsComplete, err
	}
	if t.session.IsComplete {
		st := t.Stats()
		t.logger.Info("session complete",
			"correct", st.CorrectAnswers,
			"completed", st.CompletedExercises,
			"points", st.TotalPoints)
	}
	return t.session.IsComplete, nil
}

// Reset discards the session.
func (t *Tracker) Reset() {
	_ = t.apply(Reset{})
}

// Session returns a copy of the current session.
func (t *Tracker) Session() Session {
	s := t.session
	s.Results = append([]attempt.Result(nil), s.Results...)
	return s
}

// Current returns the exercise being played, or nil.
func (t *Tracker) Current() *exercise.Exercise {
	return t.session.Current()
}

// Stats recomputes the session statistics.
func (t *Tracker) Stats() Stats {
	return ComputeStats(t.session, t.clock())
}
