package exercise

import "strings"

// Answer is the sealed set of learner answers. The variant always matches
// the exercise kind: Choice for mcq, Typed for text_input.
type Answer interface {
	Kind() Kind
	// Text is the raw value sent to the verification service.
	Text() string
	// Blank reports whether nothing was answered.
	Blank() bool
	isAnswer()
}

// Choice is a selected option key.
type Choice struct {
	Key string
}

func (Choice) Kind() Kind     { return KindMCQ }
func (c Choice) Text() string { return c.Key }
func (c Choice) Blank() bool  { return strings.TrimSpace(c.Key) == "" }
func (Choice) isAnswer()      {}

// Typed is free text entered by the learner.
type Typed struct {
	Input string
}

func (Typed) Kind() Kind     { return KindTextInput }
func (t Typed) Text() string { return t.Input }
func (t Typed) Blank() bool  { return strings.TrimSpace(t.Input) == "" }
func (Typed) isAnswer()      {}

// EmptyAnswer returns the blank answer of the given kind. It is what a
// timeout submits.
func EmptyAnswer(k Kind) Answer {
	if k == KindMCQ {
		return Choice{}
	}
	return Typed{}
}

// AnswerFor wraps a raw string into the answer variant for k.
func AnswerFor(k Kind, raw string) Answer {
	if k == KindMCQ {
		return Choice{Key: raw}
	}
	return Typed{Input: raw}
}
