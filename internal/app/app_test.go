package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/router"
	"github.com/abhisek/linguiz/internal/screen"
	"github.com/abhisek/linguiz/internal/screens/home"
)

type stubScreen struct {
	escapes bool
	keys    []string
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "stub body" }
func (s *stubScreen) Title() string        { return "Stub" }
func (s *stubScreen) HandlesEscape() bool  { return s.escapes }
func (s *stubScreen) Status() string       { return "★ 7 pts" }

func newTestModel(t *testing.T, top *stubScreen) AppModel {
	t.Helper()
	m := newAppModel(home.Config{Source: "http://test", Filter: exercise.Filter{}})
	m.router.Push(top)
	return m
}

func TestEscPopsByDefault(t *testing.T) {
	m := newTestModel(t, &stubScreen{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestEscForwardedToHandler(t *testing.T) {
	top := &stubScreen{escapes: true}
	m := newTestModel(t, top)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"esc"}, top.keys)
	assert.Equal(t, 2, m.router.Depth())
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t, &stubScreen{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewShowsStatusAndTitle(t *testing.T) {
	m := newTestModel(t, &stubScreen{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := updated.(AppModel).render()

	assert.Contains(t, out, "Linguiz")
	assert.Contains(t, out, "Stub")
	assert.Contains(t, out, "★ 7 pts")
	assert.Contains(t, out, "stub body")
}

func TestViewTooSmall(t *testing.T) {
	m := newTestModel(t, &stubScreen{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, updated.(AppModel).render(), "needs at least 80×24")
}
