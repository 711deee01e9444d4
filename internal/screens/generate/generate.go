// Package generate drafts new cards with the model and saves the chosen
// ones to the deck.
package generate

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/ui/components"
	"github.com/abhisek/ankiquiz/internal/ui/layout"
	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

type cardsGeneratedMsg struct {
	Settings settings.QuizSettings
	Cards    []*deck.GeneratedCard
	Warning  string
	Err      error
}

// cardsSavedMsg carries the saved copies of the cards. The save runs on
// copies so View never reads a card a save goroutine is writing.
type cardsSavedMsg struct {
	Cards []*deck.GeneratedCard
	Err   error
}

// GenerateScreen implements screen.Screen for card generation.
type GenerateScreen struct {
	svc      screen.Services
	settings settings.QuizSettings
	input    components.TextInput
	spin     spinner.Model
	cards    []*deck.GeneratedCard
	selected int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*GenerateScreen)(nil)
var _ screen.KeyHintProvider = (*GenerateScreen)(nil)

// New creates a GenerateScreen.
func New(svc screen.Services) *GenerateScreen {
	return &GenerateScreen{
		svc:   svc,
		input: components.NewTextInput("e.g. ten kitchen words in Spanish", 500),
		spin:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Selected)),
	}
}

func (s *GenerateScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.spin.Tick)
}

func (s *GenerateScreen) Title() string {
	return "Generate Cards"
}

func (s *GenerateScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Generate"}}
	if len(s.cards) > 0 {
		hints = append(hints,
			layout.KeyHint{Key: "↑↓", Description: "Select"},
			layout.KeyHint{Key: "Ctrl+D", Description: "Drop card"},
			layout.KeyHint{Key: "Ctrl+S", Description: "Save all"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *GenerateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsGeneratedMsg:
		s.busy = false
		s.settings = msg.Settings
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = msg.Warning
		s.cards = msg.Cards
		s.selected = 0
		return s, nil

	case cardsSavedMsg:
		s.busy = false
		s.errMsg = ""
		s.applySaved(msg.Cards)
		if msg.Err != nil {
			s.errMsg = "Some cards were not saved."
		}
		return s, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			if s.input.Blank() {
				return s, nil
			}
			return s, s.generate(s.input.Value())
		case "up":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down":
			if s.selected < len(s.cards)-1 {
				s.selected++
			}
			return s, nil
		case "ctrl+d":
			s.dropSelected()
			return s, nil
		case "ctrl+s":
			return s, s.save()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// generate asks for cards, giving the model the current deck as context so
// it avoids duplicates.
func (s *GenerateScreen) generate(prompt string) tea.Cmd {
	s.busy = true
	return func() tea.Msg {
		ctx := context.Background()
		qs, err := s.svc.LoadSettings(ctx)
		if err != nil {
			return cardsGeneratedMsg{Settings: qs, Err: err}
		}
		var warning string
		existing, err := s.svc.Deck.LoadVocabulary(ctx, qs.MaxWords, qs.DeckFilter, qs.StoreURL)
		if err != nil {
			existing = nil
			warning = "Deck unavailable, generated without duplicate context: " + err.Error()
		}
		drafts, err := s.svc.Cards.GenerateCards(ctx, prompt, existing, qs)
		if err != nil {
			return cardsGeneratedMsg{Settings: qs, Err: err}
		}
		cards := make([]*deck.GeneratedCard, len(drafts))
		for i, d := range drafts {
			cards[i] = deck.NewGeneratedCard(d.Front, d.Back)
		}
		return cardsGeneratedMsg{Settings: qs, Cards: cards, Warning: warning}
	}
}

func (s *GenerateScreen) save() tea.Cmd {
	if len(s.cards) == 0 {
		return nil
	}
	s.busy = true
	cards := make([]*deck.GeneratedCard, len(s.cards))
	for i, c := range s.cards {
		cp := *c
		cards[i] = &cp
	}
	qs := s.settings
	return func() tea.Msg {
		err := s.svc.Deck.SaveCards(context.Background(), cards, qs.DeckName(), deck.DefaultModel, qs.StoreURL)
		return cardsSavedMsg{Cards: cards, Err: err}
	}
}

// applySaved copies save results back onto the displayed cards by id.
func (s *GenerateScreen) applySaved(saved []*deck.GeneratedCard) {
	byID := make(map[string]*deck.GeneratedCard, len(saved))
	for _, c := range saved {
		byID[c.ID] = c
	}
	for i, c := range s.cards {
		if r, ok := byID[c.ID]; ok {
			s.cards[i] = r
		}
	}
}

func (s *GenerateScreen) dropSelected() {
	if s.selected < 0 || s.selected >= len(s.cards) {
		return
	}
	s.cards = append(s.cards[:s.selected], s.cards[s.selected+1:]...)
	s.selected = min(s.selected, max(len(s.cards)-1, 0))
}

func (s *GenerateScreen) View(width, height int) string {
	var b strings.Builder
	textWidth := min(width-8, 90)

	b.WriteString("\n")
	b.WriteString(theme.Body.Render("  What cards do you want? ") + s.input.View())
	b.WriteString("\n\n")

	if s.busy {
		b.WriteString("  " + s.spin.View() + " Working...\n\n")
	}

	if len(s.cards) > 0 {
		deckName := s.settings.DeckName()
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d cards for deck %q", len(s.cards), deckName)))
		b.WriteString("\n\n")
		colWidth := max((textWidth-10)/2, 8)
		for i, c := range s.cards {
			prefix := "  "
			style := theme.Unselected
			if i == s.selected {
				prefix = "▸ "
				style = theme.Selected
			}
			line := fmt.Sprintf("%-*s  %s", colWidth, layout.Truncate(c.Front, colWidth), layout.Truncate(c.Back, colWidth))
			b.WriteString(prefix + cardMark(c) + " " + style.Render(line) + "\n")
			if errText := c.ErrorText(); errText != "" && i == s.selected {
				b.WriteString("     " + theme.ErrorText.Render(layout.Truncate(errText, textWidth)) + "\n")
			}
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n" + theme.ErrorText.Width(textWidth).Render(s.errMsg))
	}
	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}

func cardMark(c *deck.GeneratedCard) string {
	switch {
	case c.Saved:
		return theme.Pass.Render("✓")
	case c.Err != nil:
		return theme.Fail.Render("✗")
	}
	return theme.Hint.Render("·")
}
