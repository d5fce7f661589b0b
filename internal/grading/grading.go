// Package grading scores answers against an exercise's answer key. It is
// the authority behind the verification endpoint.
package grading

import (
	"context"
	"log/slog"
	"strings"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/verify"
)

// TimeoutFeedback is returned for a blank answer.
const TimeoutFeedback = "Time's up!"

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "`", "'")

// Normalize prepares free text for comparison: trimmed, inner whitespace
// collapsed to one space, lowercased, and typographic apostrophes mapped
// to '.
func Normalize(s string) string {
	s = apostrophes.Replace(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Grader scores answers. The zero value is not usable; call New.
type Grader struct {
	judge  Judge
	logger *slog.Logger
}

// Option configures a Grader.
type Option func(*Grader)

// WithJudge enables a second opinion for text answers that fail the exact
// comparison.
func WithJudge(j Judge) Option {
	return func(g *Grader) { g.judge = j }
}

// WithLogger sets the grader's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Grader) { g.logger = l }
}

// New creates a Grader.
func New(opts ...Option) *Grader {
	g := &Grader{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade scores answer for ex. A blank answer is a timeout: never correct,
// zero points, with the correct answer revealed.
func (g *Grader) Grade(ctx context.Context, ex *exercise.Exercise, answer string) verify.Outcome {
	out := verify.Outcome{CorrectAnswer: CorrectAnswerText(ex)}

	if strings.TrimSpace(answer) == "" {
		out.IsTimeout = true
		out.Feedback = TimeoutFeedback
		return out
	}

	switch b := ex.Body.(type) {
	case *exercise.MCQ:
		key := strings.ToLower(strings.TrimSpace(answer))
		out.IsCorrect = key == strings.ToLower(b.CorrectAnswer)
		out.Feedback = b.Feedback[key]
		if out.Feedback == "" {
			out.Feedback = b.Feedback[b.CorrectAnswer]
		}

	case *exercise.TextInput:
		out.IsCorrect = matchesText(b, answer)
		if !out.IsCorrect && g.judge != nil {
			out.IsCorrect = g.askJudge(ctx, ex, b, answer)
		}
		out.Feedback = b.Feedback
	}

	if out.IsCorrect {
		out.Points = ex.Points
	}
	return out
}

func matchesText(b *exercise.TextInput, answer string) bool {
	given := Normalize(answer)
	if given == Normalize(b.CorrectAnswer) {
		return true
	}
	for _, alt := range b.AcceptableAnswers {
		if given == Normalize(alt) {
			return true
		}
	}
	return false
}

func (g *Grader) askJudge(ctx context.Context, ex *exercise.Exercise, b *exercise.TextInput, answer string) bool {
	expected := append([]string{b.CorrectAnswer}, b.AcceptableAnswers...)
	j, err := g.judge.Accept(ctx, ex, expected, answer)
	if err != nil {
		g.logger.WarnContext(ctx, "judge failed, keeping exact result",
			"exercise_id", ex.ID, "error", err)
		return false
	}
	g.logger.InfoContext(ctx, "judge verdict",
		"exercise_id", ex.ID, "acceptable", j.Acceptable, "reason", j.Reason)
	return j.Acceptable
}

// CorrectAnswerText renders the answer key for display: "b) le lycée" for
// multiple choice, the expected text otherwise.
func CorrectAnswerText(ex *exercise.Exercise) string {
	switch b := ex.Body.(type) {
	case *exercise.MCQ:
		if opt, ok := b.Options[b.CorrectAnswer]; ok {
			return b.CorrectAnswer + ") " + opt
		}
		return b.CorrectAnswer
	case *exercise.TextInput:
		return b.CorrectAnswer
	}
	return ""
}
