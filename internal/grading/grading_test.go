package grading

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/llm"
)

func lyceeMCQ() *exercise.Exercise {
	return &exercise.Exercise{
		ID:          "test_gr_nom_genre_qcm_a1_001",
		Category:    "grammaire",
		Subcategory: "nom_genre",
		Level:       exercise.LevelA1,
		Instruction: "Choisissez l'article qui convient.",
		Sentence:    "Je vais à ___ lycée.",
		Points:      10,
		TimeLimit:   30,
		Body: &exercise.MCQ{
			Options:       map[string]string{"a": "la", "b": "le", "c": "les", "d": "l'"},
			CorrectAnswer: "b",
			Feedback: map[string]string{
				"a": "Lycée est masculin.",
				"b": "Correct ! On dit le lycée.",
			},
		},
	}
}

func boireText() *exercise.Exercise {
	return &exercise.Exercise{
		ID:          "conj_boire_001",
		Category:    "conjugaison",
		Level:       exercise.LevelA1,
		Instruction: "Conjuguez le verbe boire au présent.",
		Sentence:    "___ un café tous les matins.",
		Points:      15,
		TimeLimit:   45,
		Body: &exercise.TextInput{
			CorrectAnswer:     "je bois",
			Feedback:          "Boire : je bois, tu bois, il boit.",
			AcceptableAnswers: []string{"moi je bois"},
		},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Je Bois ", "je bois"},
		{"  je   bois\t", "je bois"},
		{"L’école", "l'école"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestGrade_MCQ(t *testing.T) {
	g := New()
	ctx := context.Background()

	out := g.Grade(ctx, lyceeMCQ(), "b")
	assert.True(t, out.IsCorrect)
	assert.Equal(t, 10, out.Points)
	assert.Equal(t, "Correct ! On dit le lycée.", out.Feedback)
	assert.Equal(t, "b) le", out.CorrectAnswer)
	assert.False(t, out.IsTimeout)

	out = g.Grade(ctx, lyceeMCQ(), " B ")
	assert.True(t, out.IsCorrect, "key comparison ignores case and spaces")

	out = g.Grade(ctx, lyceeMCQ(), "a")
	assert.False(t, out.IsCorrect)
	assert.Zero(t, out.Points)
	assert.Equal(t, "Lycée est masculin.", out.Feedback)

	out = g.Grade(ctx, lyceeMCQ(), "z")
	assert.False(t, out.IsCorrect)
	assert.Equal(t, "Correct ! On dit le lycée.", out.Feedback, "unknown key falls back to the correct option's feedback")
}

func TestGrade_TextInputNormalizes(t *testing.T) {
	out := New().Grade(context.Background(), boireText(), "Je Bois ")
	assert.True(t, out.IsCorrect)
	assert.Equal(t, 15, out.Points)
	assert.Equal(t, "je bois", out.CorrectAnswer)
	assert.Equal(t, "Boire : je bois, tu bois, il boit.", out.Feedback)
}

func TestGrade_TextInputAcceptableAnswer(t *testing.T) {
	out := New().Grade(context.Background(), boireText(), "Moi  je bois")
	assert.True(t, out.IsCorrect)
}

func TestGrade_BlankIsTimeout(t *testing.T) {
	for _, ex := range []*exercise.Exercise{lyceeMCQ(), boireText()} {
		for _, answer := range []string{"", "   "} {
			out := New().Grade(context.Background(), ex, answer)
			assert.True(t, out.IsTimeout, ex.ID)
			assert.False(t, out.IsCorrect, ex.ID)
			assert.Zero(t, out.Points, ex.ID)
			assert.Equal(t, TimeoutFeedback, out.Feedback, ex.ID)
			assert.NotEmpty(t, out.CorrectAnswer, ex.ID)
		}
	}
}

type stubJudge struct {
	verdict Judgement
	err     error
	calls   int
}

func (s *stubJudge) Accept(context.Context, *exercise.Exercise, []string, string) (Judgement, error) {
	s.calls++
	return s.verdict, s.err
}

func TestGrade_JudgeOnlyForNearMisses(t *testing.T) {
	judge := &stubJudge{verdict: Judgement{Acceptable: true, Reason: "accent"}}
	g := New(WithJudge(judge))
	ctx := context.Background()

	assert.True(t, g.Grade(ctx, boireText(), "je bois").IsCorrect)
	assert.Equal(t, 0, judge.calls, "exact match skips the judge")

	out := g.Grade(ctx, boireText(), "je bôis")
	assert.True(t, out.IsCorrect)
	assert.Equal(t, 15, out.Points)
	assert.Equal(t, 1, judge.calls)

	g.Grade(ctx, lyceeMCQ(), "a")
	g.Grade(ctx, boireText(), "")
	assert.Equal(t, 1, judge.calls, "judge is never asked for mcq or timeouts")
}

func TestGrade_JudgeErrorKeepsExactResult(t *testing.T) {
	g := New(WithJudge(&stubJudge{err: errors.New("provider down")}))
	out := g.Grade(context.Background(), boireText(), "je boit")
	assert.False(t, out.IsCorrect)
	assert.Zero(t, out.Points)
}

func TestLLMJudge(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"acceptable":true,"reason":"missing accent only"}`),
	})
	j := NewLLMJudge(mock)

	got, err := j.Accept(context.Background(), boireText(), []string{"je bois"}, "je bôis")
	require.NoError(t, err)
	assert.True(t, got.Acceptable)
	assert.Equal(t, "missing accent only", got.Reason)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, "answer-judgement", req.Schema.Name)
	assert.Contains(t, req.Messages[0].Content, "Learner answer: je bôis")
	assert.Contains(t, req.Messages[0].Content, "Expected answers: je bois")
}

func TestLLMJudge_ProviderError(t *testing.T) {
	j := NewLLMJudge(llm.NewMockProvider())
	_, err := j.Accept(context.Background(), boireText(), []string{"je bois"}, "tu bois")
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestCorrectAnswerText(t *testing.T) {
	assert.Equal(t, "b) le", CorrectAnswerText(lyceeMCQ()))
	assert.Equal(t, "je bois", CorrectAnswerText(boireText()))
	assert.Equal(t, "", CorrectAnswerText(&exercise.Exercise{}))
}
