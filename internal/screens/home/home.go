package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linguiz/internal/exercise"
	"github.com/abhisek/linguiz/internal/router"
	"github.com/abhisek/linguiz/internal/screen"
	"github.com/abhisek/linguiz/internal/ui/components"
)

// healthTimeout bounds the startup server check.
const healthTimeout = 5 * time.Second

// Config is what the home screen shows and launches.
type Config struct {
	// Source describes where exercises come from, e.g. the API URL.
	Source string
	Filter exercise.Filter

	// NewQuiz builds a fresh quiz screen for each run.
	NewQuiz func() screen.Screen

	// Health checks the verification service. Nil skips the check.
	Health func(ctx context.Context) error
}

type healthState struct {
	checking bool
	checked  bool
	err      error
}

type healthMsg struct {
	err error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	cfg        Config
	menu       components.Menu
	menuLabels []string
	health     healthState
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(cfg Config) *HomeScreen {
	menuLabels := []string{"START QUIZ", "EXIT"}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: cfg.NewQuiz()}
			}
		}, Disabled: cfg.NewQuiz == nil},
		{Label: menuLabels[1], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		cfg:        cfg,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
		health:     healthState{checking: cfg.Health != nil},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.cfg.Health == nil {
		return nil
	}
	check := h.cfg.Health
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		return healthMsg{err: check(ctx)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if hm, ok := msg.(healthMsg); ok {
		h.health = healthState{checked: true, err: hm.err}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 30 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant(), cw))
	}

	sections = append(sections, renderSourceBar(h.cfg.Source, h.cfg.Filter, h.health, cw, compact))

	if h.health.err != nil {
		sections = append(sections, renderHealthBanner(h.health.err, cw))
	}

	if compact {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, h.menu.ButtonsView(buttonWidth))
	}

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) mascotVariant() MascotVariant {
	switch {
	case h.health.checking:
		return MascotWaiting
	case h.health.err != nil:
		return MascotAlert
	}
	return MascotIdle
}
