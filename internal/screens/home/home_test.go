package home

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/router"
	"github.com/abhisek/linguiz/internal/screen"
)

type stubScreen struct{}

func (stubScreen) Init() tea.Cmd                             { return nil }
func (s stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (stubScreen) View(int, int) string                      { return "stub" }
func (stubScreen) Title() string                             { return "Stub" }

func testConfig() Config {
	return Config{
		Source:  "http://localhost:8080",
		Filter:  exercise.Filter{Category: "verbe", Level: exercise.LevelA1, Limit: 5},
		NewQuiz: func() screen.Screen { return stubScreen{} },
	}
}

func TestHomeScreen_StartQuiz(t *testing.T) {
	h := New(testConfig())
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)

	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Stub", push.Screen.Title())
}

func TestHomeScreen_Exit(t *testing.T) {
	h := New(testConfig())
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestHomeScreen_NoQuizDisablesStart(t *testing.T) {
	cfg := testConfig()
	cfg.NewQuiz = nil
	h := New(cfg)
	assert.Equal(t, 1, h.menu.Selected)
}

func TestHomeScreen_View(t *testing.T) {
	h := New(testConfig())
	for _, size := range [][2]int{{120, 40}, {80, 18}} {
		view := h.View(size[0], size[1])
		assert.Contains(t, view, "http://localhost:8080")
		assert.Contains(t, view, "verbe")
		assert.Contains(t, view, "START QUIZ")
	}
}

func TestHomeScreen_HealthCheck(t *testing.T) {
	cfg := testConfig()
	cfg.Health = func(context.Context) error { return errors.New("server unreachable") }
	h := New(cfg)
	assert.Equal(t, MascotWaiting, h.mascotVariant())

	cmd := h.Init()
	require.NotNil(t, cmd)
	h.Update(cmd())

	assert.Equal(t, MascotAlert, h.mascotVariant())
	assert.Contains(t, h.View(120, 40), "server unreachable")
}

func TestHomeScreen_NoHealthCheck(t *testing.T) {
	h := New(testConfig())
	assert.Nil(t, h.Init())
	assert.Equal(t, MascotIdle, h.mascotVariant())
}
