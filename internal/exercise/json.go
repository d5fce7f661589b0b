package exercise

import (
	"encoding/json"
	"fmt"
)

// wireExercise is the flat JSON shape shared by the catalog files, the
// HTTP API and the store.
type wireExercise struct {
	ID                string            `json:"id"`
	Category          string            `json:"category"`
	Subcategory       string            `json:"subcategory,omitempty"`
	Type              Kind              `json:"type"`
	DifficultyLevel   Level             `json:"difficultyLevel"`
	Instruction       string            `json:"instruction"`
	Sentence          string            `json:"sentence"`
	Options           map[string]string `json:"options,omitempty"`
	CorrectAnswer     string            `json:"correctAnswer,omitempty"`
	Feedback          json.RawMessage   `json:"feedback,omitempty"`
	AcceptableAnswers []string          `json:"acceptableAnswers,omitempty"`
	Points            int               `json:"points"`
	TimeLimit         int               `json:"timeLimit"`
	Tags              []string          `json:"tags,omitempty"`
}

func (e Exercise) MarshalJSON() ([]byte, error) {
	w := wireExercise{
		ID:              e.ID,
		Category:        e.Category,
		Subcategory:     e.Subcategory,
		DifficultyLevel: e.Level,
		Instruction:     e.Instruction,
		Sentence:        e.Sentence,
		Points:          e.Points,
		TimeLimit:       e.TimeLimit,
		Tags:            e.Tags,
	}

	switch b := e.Body.(type) {
	case *MCQ:
		w.Type = KindMCQ
		w.Options = b.Options
		w.CorrectAnswer = b.CorrectAnswer
		if len(b.Feedback) > 0 {
			fb, err := json.Marshal(b.Feedback)
			if err != nil {
				return nil, err
			}
			w.Feedback = fb
		}
	case *TextInput:
		w.Type = KindTextInput
		w.CorrectAnswer = b.CorrectAnswer
		w.AcceptableAnswers = b.AcceptableAnswers
		if b.Feedback != "" {
			fb, err := json.Marshal(b.Feedback)
			if err != nil {
				return nil, err
			}
			w.Feedback = fb
		}
	case nil:
		return nil, fmt.Errorf("exercise %s: no body", e.ID)
	}

	return json.Marshal(w)
}

func (e *Exercise) UnmarshalJSON(data []byte) error {
	var w wireExercise
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*e = Exercise{
		ID:          w.ID,
		Category:    w.Category,
		Subcategory: w.Subcategory,
		Level:       w.DifficultyLevel,
		Instruction: w.Instruction,
		Sentence:    w.Sentence,
		Points:      w.Points,
		TimeLimit:   w.TimeLimit,
		Tags:        w.Tags,
	}

	switch w.Type {
	case KindMCQ:
		b := &MCQ{Options: w.Options, CorrectAnswer: w.CorrectAnswer}
		if len(w.Feedback) > 0 {
			if err := json.Unmarshal(w.Feedback, &b.Feedback); err != nil {
				return fmt.Errorf("exercise %s: mcq feedback must be an object keyed by option: %w", w.ID, err)
			}
		}
		e.Body = b
	case KindTextInput:
		b := &TextInput{CorrectAnswer: w.CorrectAnswer, AcceptableAnswers: w.AcceptableAnswers}
		if len(w.Feedback) > 0 {
			if err := json.Unmarshal(w.Feedback, &b.Feedback); err != nil {
				return fmt.Errorf("exercise %s: text_input feedback must be a string: %w", w.ID, err)
			}
		}
		e.Body = b
	default:
		// Left nil; Validate reports it as malformed.
	}
	return nil
}
