package attempt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/timer"
	"github.com/abhisek/linguiz/internal/verify"
)

// Machine owns the attempt state for the current exercise and its
// countdown. All methods must be called from one goroutine, normally the
// bubbletea Update loop.
type Machine struct {
	state     State
	countdown *timer.Countdown
	logger    *slog.Logger

	// deadline is set by the countdown's expiry hook and cleared on Load.
	deadline bool
}

// NewMachine creates a Machine. Timer options are passed to the
// countdown.
func NewMachine(logger *slog.Logger, opts ...timer.Option) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{logger: logger}
	opts = append(opts, timer.WithOnExpire(func() { m.deadline = true }))
	m.countdown = timer.New(opts...)
	return m
}

// State returns the current state with the remaining time refreshed.
func (m *Machine) State() State {
	s := m.state
	if s.Status == StatusInProgress {
		s = reduceTick(s, Tick{Remaining: m.countdown.Remaining()})
	}
	return s
}

// Timer returns the countdown snapshot.
func (m *Machine) Timer() timer.State {
	return m.countdown.State()
}

// Result returns the result once the attempt is completed.
func (m *Machine) Result() (Result, bool) {
	return m.state.Result()
}

// Dispatch applies an action. Load starts the countdown and returns its
// tick command; an accepted Submit or Expire stops it and returns the
// verification request to run.
//
// A Submit made once the time limit has passed is rejected with
// ErrDeadlinePassed, even when no tick has reported the expiry yet. The
// attempt is expired instead and the timeout request is returned together
// with the error.
func (m *Machine) Dispatch(a Action) (*Request, tea.Cmd, error) {
	if _, isLoad := a.(Load); !isLoad && m.state.Status == StatusInProgress {
		if _, isSubmit := a.(Submit); isSubmit {
			m.countdown.Refresh()
			if m.deadline {
				return m.expireLate(a)
			}
		}
		m.state = reduceTick(m.state, Tick{Remaining: m.countdown.Remaining()})
	}

	next, req, err := Reduce(m.state, a)
	if err != nil {
		m.logRejected(a, err)
		return nil, nil, err
	}
	m.state = next

	var cmd tea.Cmd
	switch a := a.(type) {
	case Load:
		m.deadline = false
		cmd = m.countdown.Start(a.Exercise.Limit())
	case Submit, Expire:
		m.countdown.Stop()
	}
	return req, cmd, nil
}

// expireLate turns an action that arrived after the time limit into the
// timeout submission.
func (m *Machine) expireLate(a Action) (*Request, tea.Cmd, error) {
	next, req, err := Reduce(m.state, Expire{})
	if err != nil {
		m.logRejected(Expire{}, err)
		return nil, nil, err
	}
	m.state = next

	err = fmt.Errorf("%w: %s", ErrDeadlinePassed, a.actionName())
	m.logRejected(a, err)
	return req, nil, err
}

// Load starts an attempt on ex.
func (m *Machine) Load(ex *exercise.Exercise) (tea.Cmd, error) {
	_, cmd, err := m.Dispatch(Load{Exercise: ex})
	return cmd, err
}

// Submit captures the learner's answer. After the time limit it returns
// the timeout request with ErrDeadlinePassed.
func (m *Machine) Submit(answer exercise.Answer) (*Request, error) {
	req, _, err := m.Dispatch(Submit{Answer: answer})
	return req, err
}

// Expire auto-submits a blank answer.
func (m *Machine) Expire() (*Request, error) {
	req, _, err := m.Dispatch(Expire{})
	return req, err
}

// Resolve applies the outcome of req.
func (m *Machine) Resolve(req Request, out verify.Outcome) error {
	_, _, err := m.Dispatch(Verified{ExerciseID: req.ExerciseID, Seq: req.Seq, Outcome: out})
	return err
}

// Fail records a failed verification of req.
func (m *Machine) Fail(req Request, cause error) error {
	_, _, err := m.Dispatch(VerifyFailed{ExerciseID: req.ExerciseID, Seq: req.Seq, Err: cause})
	return err
}

// Retry resends the captured answer after a failure.
func (m *Machine) Retry() (*Request, error) {
	req, _, err := m.Dispatch(Retry{})
	return req, err
}

// HandleTimer routes countdown messages. On expiry it dispatches Expire
// and returns the resulting request. Messages that are not for this
// machine's countdown return all nils.
func (m *Machine) HandleTimer(msg tea.Msg) (*Request, tea.Cmd, error) {
	switch msg := msg.(type) {
	case timer.TickMsg:
		cmd := m.countdown.Update(msg)
		if m.state.Status == StatusInProgress {
			m.state = reduceTick(m.state, Tick{Remaining: m.countdown.Remaining()})
		}
		return nil, cmd, nil

	case timer.ExpiredMsg:
		// The countdown was restarted or reset since it expired.
		if msg.ID != m.countdown.ID() || !m.countdown.State().Expired {
			return nil, nil, nil
		}
		req, _, err := m.Dispatch(Expire{})
		return req, nil, err
	}
	return nil, nil, nil
}

// Stop halts the countdown, e.g. when the screen is torn down.
func (m *Machine) Stop() {
	m.countdown.Reset()
}

func (m *Machine) logRejected(a Action, err error) {
	level := slog.LevelDebug
	if !errors.Is(err, ErrInvalidTransition) && !errors.Is(err, ErrStale) {
		level = slog.LevelWarn
	}
	m.logger.Log(context.Background(), level, "attempt action rejected",
		"action", a.actionName(),
		"exercise_id", m.state.ExerciseID,
		"status", m.state.Status.String(),
		"error", err)
}
