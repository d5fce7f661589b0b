package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/llm"
)

// Judgement is a judge's verdict on a near-miss answer.
type Judgement struct {
	Acceptable bool   `json:"acceptable"`
	Reason     string `json:"reason"`
}

// Judge decides whether a text answer that failed the exact comparison is
// still an acceptable variant of one of the expected answers.
type Judge interface {
	Accept(ctx context.Context, ex *exercise.Exercise, expected []string, given string) (Judgement, error)
}

const judgeSystemPrompt = `You grade short answers in a language-learning quiz.
The learner filled the blank in a sentence. Accept the answer only if it is a
correct spelling of one of the expected answers, allowing differences in
accents, capitalization or spacing. Reject different words, tenses, persons
or genders. Answer with the JSON verdict only.`

var judgementSchema = &llm.Schema{
	Name:        "answer-judgement",
	Description: "Whether a learner's answer is an acceptable variant",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"acceptable": map[string]any{"type": "boolean"},
			"reason":     map[string]any{"type": "string"},
		},
		"required":             []any{"acceptable", "reason"},
		"additionalProperties": false,
	},
}

// LLMJudge asks an LLM provider for a structured verdict.
type LLMJudge struct {
	provider llm.Provider
}

// NewLLMJudge creates a judge backed by p.
func NewLLMJudge(p llm.Provider) *LLMJudge {
	return &LLMJudge{provider: p}
}

func (j *LLMJudge) Accept(ctx context.Context, ex *exercise.Exercise, expected []string, given string) (Judgement, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Instruction: %s\n", ex.Instruction)
	fmt.Fprintf(&b, "Sentence: %s\n", ex.Sentence)
	fmt.Fprintf(&b, "Expected answers: %s\n", strings.Join(expected, " | "))
	fmt.Fprintf(&b, "Learner answer: %s\n", given)

	resp, err := j.provider.Generate(llm.WithPurpose(ctx, "answer-judge"), llm.Request{
		System:    judgeSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Schema:    judgementSchema,
		MaxTokens: 200,
	})
	if err != nil {
		return Judgement{}, fmt.Errorf("judge %s: %w", ex.ID, err)
	}

	var verdict Judgement
	if err := json.Unmarshal(resp.Content, &verdict); err != nil {
		return Judgement{}, fmt.Errorf("decode judgement: %w", err)
	}
	return verdict, nil
}
