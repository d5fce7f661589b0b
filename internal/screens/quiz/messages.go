package quiz

import (
	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/verify"
)

// exercisesLoadedMsg carries the result of the session fetch. Gen guards
// against a reply from an abandoned load.
type exercisesLoadedMsg struct {
	Gen       int
	Exercises []*exercise.Exercise
	Err       error
}

// verifiedMsg carries the reply to a verification request.
type verifiedMsg struct {
	Req     attempt.Request
	Outcome verify.Outcome
	Err     error
}
