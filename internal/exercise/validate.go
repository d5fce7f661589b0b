package exercise

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrMalformed matches any *MalformedError.
var ErrMalformed = errors.New("malformed exercise")

// MalformedError reports an exercise that is missing required fields or
// carries inconsistent type-specific data.
type MalformedError struct {
	ID      string
	Reasons []string
}

func (e *MalformedError) Error() string {
	id := e.ID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("malformed exercise %s: %s", id, strings.Join(e.Reasons, "; "))
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

var (
	validateOnce sync.Once
	structs      *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		structs = validator.New()
		_ = structs.RegisterValidation("cefr_level", func(fl validator.FieldLevel) bool {
			return Level(fl.Field().String()).Valid()
		})
	})
	return structs
}

// Validate checks the fields a client needs to render and answer the
// exercise. It does not require the answer key, so it accepts the
// public view returned by Public.
func (e *Exercise) Validate() error {
	var reasons []string

	if err := structValidator().Struct(e); err != nil {
		reasons = append(reasons, fieldReasons(err)...)
	}

	switch b := e.Body.(type) {
	case *MCQ:
		if err := structValidator().Struct(b); err != nil {
			reasons = append(reasons, fieldReasons(err)...)
		}
	case *TextInput:
		// No client-side requirements beyond the common fields.
	case nil:
		reasons = append(reasons, "missing type-specific fields")
	}

	if len(reasons) > 0 {
		return &MalformedError{ID: e.ID, Reasons: dedupe(reasons)}
	}
	return nil
}

// ValidateKey checks the exercise including its answer key. Catalogs
// loaded by the verification service must pass it.
func (e *Exercise) ValidateKey() error {
	err := e.Validate()
	var reasons []string
	var malformed *MalformedError
	if errors.As(err, &malformed) {
		reasons = malformed.Reasons
	} else if err != nil {
		return err
	}

	switch b := e.Body.(type) {
	case *MCQ:
		if b.CorrectAnswer == "" {
			reasons = append(reasons, "correctAnswer is required")
		} else if _, ok := b.Options[b.CorrectAnswer]; !ok {
			reasons = append(reasons, fmt.Sprintf("correctAnswer %q is not an option key", b.CorrectAnswer))
		}
		for key := range b.Feedback {
			if _, ok := b.Options[key]; !ok {
				reasons = append(reasons, fmt.Sprintf("feedback key %q is not an option key", key))
			}
		}
	case *TextInput:
		if strings.TrimSpace(b.CorrectAnswer) == "" {
			reasons = append(reasons, "correctAnswer is required")
		}
	}

	if len(reasons) > 0 {
		return &MalformedError{ID: e.ID, Reasons: reasons}
	}
	return nil
}

func fieldReasons(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
