// Package history lists past quiz sessions and the answers given in them.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/store"
	"github.com/abhisek/ankiquiz/internal/ui/components"
	"github.com/abhisek/ankiquiz/internal/ui/layout"
	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

const sessionLimit = 50

type sessionsMsg struct {
	sessions []store.SessionSummary
	err      error
}

type answersMsg struct {
	sessionID string
	answers   []store.AnswerEvent
	err       error
}

// HistoryScreen shows one row per session. Enter opens a session's answers,
// which are fetched the first time it is opened.
type HistoryScreen struct {
	repo     store.EventRepo
	sessions []store.SessionSummary
	answers  map[string][]store.AnswerEvent
	cursor   int
	open     string
	loaded   bool
	errMsg   string
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(repo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo, answers: map[string][]store.AnswerEvent{}}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: sessionLimit})
		return sessionsMsg{sessions: sessions, err: err}
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Enter", Description: "Answers"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsMsg:
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.sessions = msg.sessions

	case answersMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.answers[msg.sessionID] = msg.answers

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = min(s.cursor+1, max(len(s.sessions)-1, 0))
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

// toggle opens the session under the cursor, or closes it if it is open.
func (s *HistoryScreen) toggle() tea.Cmd {
	if s.cursor >= len(s.sessions) {
		return nil
	}
	id := s.sessions[s.cursor].SessionID
	if s.open == id {
		s.open = ""
		return nil
	}
	s.open = id
	if _, ok := s.answers[id]; ok {
		return nil
	}
	repo := s.repo
	return func() tea.Msg {
		answers, err := repo.QueryAnswers(context.Background(), store.QueryOpts{Session: id})
		return answersMsg{sessionID: id, answers: answers, err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}
	switch {
	case s.errMsg != "":
		return "\n\n" + center(theme.ErrorText.Render("Error: "+s.errMsg))
	case !s.loaded:
		return "\n\n" + center(theme.Hint.Render("Loading history..."))
	case len(s.sessions) == 0:
		return "\n\n" + center(theme.Hint.Render("No quiz sessions yet."))
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, sess := range s.sessions {
		style := theme.Unselected
		marker := "  "
		if i == s.cursor {
			style, marker = theme.Selected, "▸ "
		}
		row := fmt.Sprintf("%s%s  %3d answered  ", marker, sess.Started.Local().Format("Jan 02 15:04"), sess.Answered)
		bar := components.ScoreBar{Passed: sess.Passed, Answered: sess.Answered, Width: 24}
		b.WriteString(center(style.Render(row) + bar.View()))
		b.WriteString("\n")

		if sess.SessionID == s.open {
			b.WriteString(s.answerLines(sess.SessionID, width))
		}
	}
	return b.String()
}

func (s *HistoryScreen) answerLines(sessionID string, width int) string {
	answers, ok := s.answers[sessionID]
	if !ok {
		return "    " + theme.Hint.Render("Loading answers...") + "\n"
	}
	textWidth := max(width-12, 20)

	var b strings.Builder
	for _, a := range answers {
		mark := theme.Pass.Render("✓")
		if a.Result != string(quizgen.Pass) {
			mark = theme.Fail.Render("✗")
		}
		fmt.Fprintf(&b, "    %s %s\n", mark, theme.Body.Render(layout.Truncate(a.Question, textWidth)))
		fmt.Fprintf(&b, "      %s\n", theme.Hint.Render(layout.Truncate(a.Answer, textWidth)))
		if a.Result != string(quizgen.Pass) && a.Feedback != "" {
			fmt.Fprintf(&b, "      %s\n", theme.ErrorText.Render(layout.Truncate(a.Feedback, textWidth)))
		}
	}
	return b.String()
}
