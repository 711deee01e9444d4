// Package quiz is the interactive quiz screen. It drives the shared
// session machine and renders its snapshot.
package quiz

import (
	"context"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/ui/components"
	"github.com/abhisek/ankiquiz/internal/ui/layout"
	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

// settingsLoadedMsg carries the settings read when the screen opens.
type settingsLoadedMsg struct {
	Settings settings.QuizSettings
	Err      error
}

// actionDoneMsg is sent when a machine call returns.
type actionDoneMsg struct {
	Action session.Action
	Err    error
}

// QuizScreen implements screen.Screen for a quiz run.
type QuizScreen struct {
	svc      screen.Services
	settings settings.QuizSettings
	ready    bool
	input    components.TextInput
	spin     spinner.Model
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen.
func New(svc screen.Services) *QuizScreen {
	return &QuizScreen{
		svc:   svc,
		input: components.NewTextInput("Type your answer...", 0),
		spin:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Selected)),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.spin.Tick, s.loadSettings)
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.busy {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	switch s.svc.Machine.Phase() {
	case session.AwaitingAnswer:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Ctrl+S", Description: "Skip"},
			{Key: "Ctrl+R", Description: "Reload cards"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next question"},
			{Key: "Ctrl+R", Description: "Reload cards"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *QuizScreen) loadSettings() tea.Msg {
	qs, err := s.svc.LoadSettings(context.Background())
	return settingsLoadedMsg{Settings: qs, Err: err}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		s.settings, s.ready = msg.Settings, true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if s.svc.Machine.Phase() == session.Idle {
			return s, s.advance("")
		}
		return s, nil

	case actionDoneMsg:
		s.busy = false
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		if msg.Action == session.ActionQuestion {
			s.input.Reset()
		}
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if !s.ready || s.busy {
		return s, nil
	}
	phase := s.svc.Machine.Phase()

	switch msg.String() {
	case "enter":
		if phase == session.AwaitingAnswer && s.input.Blank() {
			s.errMsg = "Please type an answer first."
			return s, nil
		}
		return s, s.advance(s.input.Value())
	case "ctrl+s":
		if phase == session.AwaitingAnswer {
			return s, s.run(session.ActionQuestion, s.svc.Machine.Skip)
		}
		return s, nil
	case "ctrl+r":
		return s, s.run(session.ActionNone, s.svc.Machine.Reload)
	}

	if phase == session.AwaitingAnswer {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// advance fires the single advance trigger with the typed input.
func (s *QuizScreen) advance(input string) tea.Cmd {
	s.busy = true
	qs, m := s.settings, s.svc.Machine
	return func() tea.Msg {
		action, err := m.Advance(context.Background(), qs, input)
		return actionDoneMsg{Action: action, Err: err}
	}
}

func (s *QuizScreen) run(action session.Action, fn func(context.Context, settings.QuizSettings) error) tea.Cmd {
	s.busy = true
	qs := s.settings
	return func() tea.Msg {
		return actionDoneMsg{Action: action, Err: fn(context.Background(), qs)}
	}
}
