package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/store"
	"github.com/abhisek/linguiz/internal/verify"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrNotFound is returned for an unknown exercise ID.
var ErrNotFound = errors.New("exercise not found")

// Service serves exercises without their answer keys and scores answers
// against the stored keys. It satisfies both session.ExerciseStore and
// verify.Service, so the quiz can run against it in-process.
type Service struct {
	repo   store.ExerciseRepo
	grader *Grader
	logger *slog.Logger
}

var _ verify.Service = (*Service)(nil)

// NewService creates a Service. A nil grader uses New().
func NewService(repo store.ExerciseRepo, grader *Grader, logger *slog.Logger) *Service {
	if grader == nil {
		grader = New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, grader: grader, logger: logger}
}

// ClampLimit applies DefaultLimit to non-positive values and caps at
// MaxLimit.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// FetchExercises lists exercises matching filter with answer keys removed.
func (s *Service) FetchExercises(ctx context.Context, filter exercise.Filter) ([]*exercise.Exercise, error) {
	filter.Limit = ClampLimit(filter.Limit)

	exs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*exercise.Exercise, len(exs))
	for i, ex := range exs {
		out[i] = ex.Public()
	}
	return out, nil
}

// VerifyAnswer grades answer for the stored exercise id. A blank answer
// is a timeout request.
func (s *Service) VerifyAnswer(ctx context.Context, id, answer string) (verify.Outcome, error) {
	ex, err := s.repo.Get(ctx, id)
	if err != nil {
		return verify.Outcome{}, err
	}
	if ex == nil {
		return verify.Outcome{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	out := s.grader.Grade(ctx, ex, answer)
	s.logger.DebugContext(ctx, "answer graded",
		"exercise_id", id,
		"correct", out.IsCorrect,
		"timeout", out.IsTimeout,
		"points", out.Points)
	return out, nil
}
