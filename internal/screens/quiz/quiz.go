// Package quiz is the screen that plays one session: it loads the
// exercises, runs each attempt against its countdown and sends answers for
// verification.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linguiz/internal/attempt"
	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/router"
	"github.com/abhisek/linguiz/internal/screen"
	"github.com/abhisek/linguiz/internal/screens/summary"
	"github.com/abhisek/linguiz/internal/session"
	"github.com/abhisek/linguiz/internal/timer"
	"github.com/abhisek/linguiz/internal/ui/components"
	"github.com/abhisek/linguiz/internal/ui/layout"
	"github.com/abhisek/linguiz/internal/verify"
)

// Deps are the collaborators of a quiz run.
type Deps struct {
	Store    session.ExerciseStore
	Verifier verify.Verifier
	Filter   exercise.Filter
	Logger   *slog.Logger

	// Clock and TimerOptions are replaced in tests.
	Clock        func() time.Time
	TimerOptions []timer.Option
}

// QuizScreen plays a session.
type QuizScreen struct {
	deps    Deps
	logger  *slog.Logger
	machine *attempt.Machine
	tracker *session.Tracker

	// ctx is cancelled when the screen leaves the stack so in-flight
	// fetches and verifications are abandoned.
	ctx    context.Context
	cancel context.CancelFunc

	loadGen int
	loading bool
	loadErr error

	gap     exercise.Gap
	choices components.Choices
	input   components.TextInput
	notice  string

	confirmQuit bool
}

var (
	_ screen.Screen          = (*QuizScreen)(nil)
	_ screen.KeyHintProvider = (*QuizScreen)(nil)
	_ screen.StatusProvider  = (*QuizScreen)(nil)
	_ screen.EscapeHandler   = (*QuizScreen)(nil)
	_ screen.Closer          = (*QuizScreen)(nil)
)

// New creates a QuizScreen. Nothing is fetched until Init.
func New(deps Deps) *QuizScreen {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	trackerOpts := []session.TrackerOption{session.WithLogger(logger)}
	if deps.Clock != nil {
		trackerOpts = append(trackerOpts, session.WithClock(deps.Clock))
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &QuizScreen{
		deps:    deps,
		logger:  logger,
		machine: attempt.NewMachine(logger, deps.TimerOptions...),
		tracker: session.NewTracker(trackerOpts...),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.load()
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) HandlesEscape() bool { return true }

// Close abandons in-flight work and stops the countdown.
func (s *QuizScreen) Close() {
	s.cancel()
	s.machine.Stop()
}

// Status shows the running score and the current level.
func (s *QuizScreen) Status() string {
	if !s.tracker.Session().Started() {
		return ""
	}
	status := fmt.Sprintf("★ %d pts", s.tracker.Session().TotalPoints)
	if ex := s.tracker.Current(); ex != nil {
		status += "  " + string(ex.Level)
	}
	return status
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.loading {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.loadErr != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}

	st := s.machine.State()
	switch {
	case st.Status == attempt.StatusCompleted:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
			{Key: "Esc", Description: "Quit"},
		}
	case st.Err != nil && !verify.IsRetryable(st.Err):
		return []layout.KeyHint{
			{Key: "S", Description: "Skip"},
			{Key: "Esc", Description: "Quit"},
		}
	case st.Err != nil:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Quit"},
		}
	case st.Kind == exercise.KindMCQ:
		return []layout.KeyHint{
			{Key: "a-d/1-4", Description: "Answer"},
			{Key: "↑↓ Enter", Description: "Select"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width, height, len(s.tracker.Session().Results))
	}
	if s.loading {
		return renderLoading(width, height)
	}
	if s.loadErr != nil {
		return renderLoadError(width, height, s.loadErr)
	}
	ex := s.tracker.Current()
	if ex == nil {
		return renderLoading(width, height)
	}
	return s.renderExercise(ex, width, height)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exercisesLoadedMsg:
		return s.handleLoaded(msg)

	case verifiedMsg:
		return s.handleVerified(msg)

	case timer.TickMsg, timer.ExpiredMsg:
		return s.handleTimer(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and friends.
	if st := s.machine.State(); st.AcceptsInput() && st.Kind == exercise.KindTextInput {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// load fetches the session's exercises.
func (s *QuizScreen) load() tea.Cmd {
	s.loadGen++
	s.loading = true
	s.loadErr = nil

	ctx, gen := s.ctx, s.loadGen
	store, filter := s.deps.Store, s.deps.Filter
	return func() tea.Msg {
		exs, err := session.Fetch(ctx, store, filter)
		return exercisesLoadedMsg{Gen: gen, Exercises: exs, Err: err}
	}
}

func (s *QuizScreen) handleLoaded(msg exercisesLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Gen != s.loadGen {
		return s, nil
	}
	s.loading = false
	if msg.Err != nil {
		s.loadErr = msg.Err
		s.logger.Error("failed to load exercises", "error", msg.Err)
		return s, nil
	}
	if err := s.tracker.Start(msg.Exercises); err != nil {
		s.loadErr = &session.LoadError{Err: err}
		return s, nil
	}
	return s, s.startExercise()
}

// startExercise loads the tracker's current exercise into the machine
// and resets the answer widgets.
func (s *QuizScreen) startExercise() tea.Cmd {
	ex := s.tracker.Current()
	if ex == nil {
		return nil
	}
	cmd, err := s.machine.Load(ex)
	if err != nil {
		s.loadErr = err
		return nil
	}

	s.gap = exercise.SplitSentence(ex.Sentence)
	s.notice = ""
	switch body := ex.Body.(type) {
	case *exercise.MCQ:
		s.choices = components.NewChoices(body.Keys(), body.Options)
	case *exercise.TextInput:
		placeholder := "Type your answer..."
		if s.gap.Hint != "" {
			placeholder = s.gap.Hint
		}
		s.input = components.NewTextInput(placeholder)
	}
	return cmd
}

func (s *QuizScreen) handleTimer(msg tea.Msg) (screen.Screen, tea.Cmd) {
	req, cmd, err := s.machine.HandleTimer(msg)
	if err != nil || req == nil {
		// A rejected expiry lost the race to a submission.
		return s, cmd
	}
	return s, tea.Batch(cmd, s.verify(*req))
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.quit()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.loading || s.loadErr != nil {
		switch key {
		case "r", "R":
			if s.loadErr != nil {
				s.tracker.Reset()
				return s, s.load()
			}
		case "esc":
			return s, s.quit()
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	st := s.machine.State()
	switch {
	case st.AcceptsInput():
		return s.handleAnswerKey(msg, st)
	case st.Status == attempt.StatusCompleted:
		return s.advance()
	case st.Err != nil && !verify.IsRetryable(st.Err):
		// Resending cannot help; the exercise is skipped unscored.
		if key == "s" || key == "S" {
			s.logger.Info("exercise skipped", "exercise_id", st.ExerciseID, "error", st.Err)
			return s.advance()
		}
	case st.Err != nil && (key == "r" || key == "R"):
		return s.retry()
	}
	// Submitting: inputs are disabled until the verdict arrives.
	return s, nil
}

func (s *QuizScreen) handleAnswerKey(msg tea.KeyMsg, st attempt.State) (screen.Screen, tea.Cmd) {
	switch st.Kind {
	case exercise.KindMCQ:
		var picked string
		s.choices, picked = s.choices.Update(msg)
		if picked == "" {
			return s, nil
		}
		return s.submit(exercise.Choice{Key: picked})

	case exercise.KindTextInput:
		if msg.String() == "enter" {
			value := s.input.Value()
			if strings.TrimSpace(value) == "" {
				s.notice = "Type an answer first."
				return s, nil
			}
			return s.submit(exercise.Typed{Input: value})
		}
		s.notice = ""
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) submit(answer exercise.Answer) (screen.Screen, tea.Cmd) {
	req, err := s.machine.Submit(answer)
	if errors.Is(err, attempt.ErrDeadlinePassed) && req != nil {
		// Too late: the blank timeout submission goes out instead.
		return s, s.verify(*req)
	}
	if err != nil {
		return s, nil
	}
	return s, s.verify(*req)
}

func (s *QuizScreen) retry() (screen.Screen, tea.Cmd) {
	req, err := s.machine.Retry()
	if err != nil {
		return s, nil
	}
	return s, s.verify(*req)
}

// verify runs req against the verifier off the event loop.
func (s *QuizScreen) verify(req attempt.Request) tea.Cmd {
	ctx, v := s.ctx, s.deps.Verifier
	return func() tea.Msg {
		out, err := v.Verify(ctx, req.ExerciseID, req.Answer, req.Timeout)
		return verifiedMsg{Req: req, Outcome: out, Err: err}
	}
}

func (s *QuizScreen) handleVerified(msg verifiedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if err := s.machine.Fail(msg.Req, msg.Err); err == nil {
			s.logger.Warn("verification failed",
				"exercise_id", msg.Req.ExerciseID,
				"retryable", verify.IsRetryable(msg.Err),
				"error", msg.Err)
		}
		return s, nil
	}
	if err := s.machine.Resolve(msg.Req, msg.Outcome); err != nil {
		return s, nil
	}

	result, ok := s.machine.Result()
	if ok {
		_ = s.tracker.RecordResult(result)
	}
	s.lockAnswer(s.machine.State())
	return s, nil
}

// lockAnswer freezes the answer widgets and marks the verdict.
func (s *QuizScreen) lockAnswer(st attempt.State) {
	switch st.Kind {
	case exercise.KindMCQ:
		s.choices.Lock(st.Answer.Text(), correctKey(st.CorrectAnswer, s.choices.Options))
	case exercise.KindTextInput:
		s.input.Lock(st.Verdict == attempt.VerdictCorrect)
	}
}

// correctKey extracts the option key from a "b) le lycée" answer text.
func correctKey(text string, options map[string]string) string {
	key, _, found := strings.Cut(text, ")")
	if !found {
		key = text
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := options[key]; ok {
		return key
	}
	return ""
}

func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	done, err := s.tracker.Advance()
	if err != nil {
		return s, nil
	}
	if done {
		return s, s.showSummary()
	}
	return s, s.startExercise()
}

// quit leaves the quiz. A session with results still gets its summary.
func (s *QuizScreen) quit() tea.Cmd {
	if len(s.tracker.Session().Results) > 0 {
		return s.showSummary()
	}
	return func() tea.Msg { return router.PopScreenMsg{} }
}

func (s *QuizScreen) showSummary() tea.Cmd {
	s.machine.Stop()
	sum := summary.New(s.tracker.Session(), s.tracker.Stats())
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}
