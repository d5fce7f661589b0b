package exercise

import (
	"sort"
	"time"
)

// Kind discriminates the exercise variants.
type Kind string

const (
	KindMCQ       Kind = "mcq"
	KindTextInput Kind = "text_input"
)

// Level is a CEFR difficulty level.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// AllLevels lists the CEFR levels from easiest to hardest.
var AllLevels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Valid reports whether l is a known CEFR level.
func (l Level) Valid() bool {
	for _, known := range AllLevels {
		if l == known {
			return true
		}
	}
	return false
}

// Exercise is a single quiz item. It is immutable once loaded.
type Exercise struct {
	ID          string   `validate:"required"`
	Category    string   `validate:"required"`
	Subcategory string
	Level       Level    `validate:"required,cefr_level"`
	Instruction string   `validate:"required"`
	Sentence    string   `validate:"required"`
	Points      int      `validate:"gt=0"`
	TimeLimit   int      `validate:"gt=0"` // seconds
	Tags        []string

	// Body carries the type-specific fields. Exactly one of *MCQ or
	// *TextInput.
	Body Body `validate:"-"`
}

// Kind returns the variant of the exercise body, or "" if unset.
func (e *Exercise) Kind() Kind {
	if e.Body == nil {
		return ""
	}
	return e.Body.Kind()
}

// Limit returns the time limit as a duration.
func (e *Exercise) Limit() time.Duration {
	return time.Duration(e.TimeLimit) * time.Second
}

// Public returns a copy with the answer key removed, suitable for
// sending to a client.
func (e *Exercise) Public() *Exercise {
	out := *e
	out.Tags = append([]string(nil), e.Tags...)

	switch b := e.Body.(type) {
	case *MCQ:
		opts := make(map[string]string, len(b.Options))
		for k, v := range b.Options {
			opts[k] = v
		}
		out.Body = &MCQ{Options: opts}
	case *TextInput:
		out.Body = &TextInput{}
	}
	return &out
}

// Body is the sealed set of exercise variants.
type Body interface {
	Kind() Kind
	isBody()
}

// MCQ is a multiple-choice body. Options are keyed by a short label
// ("a", "b", ...).
type MCQ struct {
	Options       map[string]string `validate:"min=2,dive,keys,required,endkeys,required"`
	CorrectAnswer string
	Feedback      map[string]string
}

func (*MCQ) Kind() Kind { return KindMCQ }
func (*MCQ) isBody()    {}

// Keys returns the option keys in display order.
func (m *MCQ) Keys() []string {
	keys := make([]string, 0, len(m.Options))
	for k := range m.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TextInput is a fill-in-the-blank body.
type TextInput struct {
	CorrectAnswer     string
	Feedback          string
	AcceptableAnswers []string
}

func (*TextInput) Kind() Kind { return KindTextInput }
func (*TextInput) isBody()    {}

// Filter narrows an exercise listing.
type Filter struct {
	Category string
	Level    Level
	// Limit caps the number of exercises; zero means the caller's default.
	Limit int
}
