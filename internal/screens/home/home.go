package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/router"
	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/screens/generate"
	"github.com/abhisek/ankiquiz/internal/screens/history"
	"github.com/abhisek/ankiquiz/internal/screens/quiz"
	"github.com/abhisek/ankiquiz/internal/screens/review"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/ui/components"
	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

type settingsLoadedMsg struct {
	Settings settings.QuizSettings
	Err      error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc      screen.Services
	menu     components.Menu
	settings settings.QuizSettings
	errMsg   string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. History is disabled without an event log.
func New(svc screen.Services) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	items := []components.MenuItem{
		{Label: "QUIZ", Hint: "answer model-written questions", Action: push(func() screen.Screen { return quiz.New(svc) })},
		{Label: "REVIEW", Hint: "grades, edits and cleanup", Action: push(func() screen.Screen { return review.New(svc) })},
		{Label: "GENERATE CARDS", Hint: "draft new cards", Action: push(func() screen.Screen { return generate.New(svc) })},
		{Label: "HISTORY", Hint: "past quiz sessions", Disabled: svc.Events == nil, Action: push(func() screen.Screen { return history.New(svc.Events) })},
		{Label: "EXIT", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{svc: svc, menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadSettings
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// Status is shown on the right of the header.
func (h *HomeScreen) Status() string {
	deckName := h.settings.DeckFilter
	if deckName == "" {
		deckName = "all decks"
	}
	return fmt.Sprintf("%s · %s", deckName, h.settings.Model)
}

func (h *HomeScreen) loadSettings() tea.Msg {
	qs, err := h.svc.LoadSettings(context.Background())
	return settingsLoadedMsg{Settings: qs, Err: err}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsLoadedMsg:
		h.settings = msg.Settings
		h.errMsg = ""
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		}
		return h, nil
	case router.ResumedMsg:
		return h, h.loadSettings
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("ankiquiz"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("practice your Anki cards with a language model"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	b.WriteString("\n")

	info := []string{
		fmt.Sprintf("Store:     %s", h.settings.StoreURL),
		fmt.Sprintf("Deck:      %s", orAll(h.settings.DeckFilter)),
		fmt.Sprintf("Direction: %s", h.settings.Direction),
		fmt.Sprintf("Model:     %s (%s)", h.settings.Model, h.settings.Provider),
		fmt.Sprintf("Prompts:   %s", h.settings.PromptsConfig.Name),
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(strings.Join(info, "\n"))))

	if h.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Width(width).Align(lipgloss.Center).Render(h.errMsg))
	}
	return b.String()
}

func orAll(filter string) string {
	if filter == "" {
		return "(all decks)"
	}
	return filter
}
