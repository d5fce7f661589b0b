// Package verify adapts the remote verification service for the quiz
// client. It decides nothing about correctness itself.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/linguiz/internal/exercise"
)

// DefaultTimeout bounds a single verification call.
const DefaultTimeout = 10 * time.Second

// Outcome is the normalized verification response.
type Outcome struct {
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	CorrectAnswer string `json:"correctAnswer"`
	Feedback      string `json:"feedback"`
	IsTimeout     bool   `json:"isTimeout,omitempty"`
}

// Service is the authoritative scorer, usually reached over HTTP. An
// empty answer is a valid timeout request.
type Service interface {
	VerifyAnswer(ctx context.Context, exerciseID, answer string) (Outcome, error)
}

// Verifier submits a learner answer for scoring.
type Verifier interface {
	Verify(ctx context.Context, exerciseID string, answer exercise.Answer, timeout bool) (Outcome, error)
}

// Adapter implements Verifier over a Service.
type Adapter struct {
	svc     Service
	timeout time.Duration
	logger  *slog.Logger
}

var _ Verifier = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates an Adapter.
func NewAdapter(svc Service, opts ...Option) *Adapter {
	a := &Adapter{
		svc:     svc,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Verify sends the answer and returns the service's verdict. When timeout
// is set the answer is sent blank and the outcome is tagged IsTimeout.
// Failures are returned as *Error.
func (a *Adapter) Verify(ctx context.Context, exerciseID string, answer exercise.Answer, timeout bool) (Outcome, error) {
	raw, err := answerText(answer)
	if err != nil {
		return Outcome{}, &Error{ExerciseID: exerciseID, Timeout: timeout, Err: err}
	}
	if timeout {
		raw = ""
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.svc.VerifyAnswer(ctx, exerciseID, raw)
	if err != nil {
		a.logger.Warn("verification failed",
			"exercise_id", exerciseID,
			"timeout", timeout,
			"error", err)
		return Outcome{}, &Error{ExerciseID: exerciseID, Timeout: timeout, Err: err}
	}

	if timeout {
		out.IsTimeout = true
	}
	return out, nil
}

// answerText extracts the field the service expects for each variant.
func answerText(answer exercise.Answer) (string, error) {
	switch a := answer.(type) {
	case exercise.Choice:
		return a.Key, nil
	case exercise.Typed:
		return a.Input, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported answer type %T", answer)
	}
}

// Error is a failed verification call.
type Error struct {
	ExerciseID string
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("verify %s: %v", e.ExerciseID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// statusCoder is implemented by transport errors that carry an HTTP
// status.
type statusCoder interface {
	HTTPStatus() int
}

// IsRetryable reports whether resending the same answer may succeed.
// Client errors (4xx) and cancellation are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatus()
		return code >= 500 || code == 429 || code == 408
	}
	return true
}
