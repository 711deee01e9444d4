// Package review lists graded notes with sorting, inline edits of the
// back field and deletion.
package review

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/grading"
	"github.com/abhisek/ankiquiz/internal/screen"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/ui/components"
	"github.com/abhisek/ankiquiz/internal/ui/layout"
	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

type notesLoadedMsg struct {
	Settings settings.QuizSettings
	Notes    []deck.ReviewNote
	Err      error
}

// noteSavedMsg reports an edit or delete of one note.
type noteSavedMsg struct {
	NoteID  int64
	Back    string
	Deleted bool
	Err     error
}

type mode int

const (
	modeList mode = iota
	modeEdit
	modeConfirmDelete
)

// ReviewScreen implements screen.Screen for the note review list.
type ReviewScreen struct {
	svc      screen.Services
	settings settings.QuizSettings
	notes    []deck.ReviewNote
	sort     deck.SortMode
	selected int
	offset   int
	expanded bool
	mode     mode
	input    components.TextInput
	loaded   bool
	errMsg   string
	status   string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.InputCapturer = (*ReviewScreen)(nil)

// New creates a ReviewScreen sorted weakest first.
func New(svc screen.Services) *ReviewScreen {
	return &ReviewScreen{svc: svc, sort: deck.SortBadFirst}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return s.load
}

func (s *ReviewScreen) Title() string {
	return "Review"
}

func (s *ReviewScreen) CapturingInput() bool {
	return s.mode != modeList
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeEdit:
		return []layout.KeyHint{{Key: "Enter", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	case modeConfirmDelete:
		return []layout.KeyHint{{Key: "Y", Description: "Delete"}, {Key: "N", Description: "Keep"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "S", Description: "Sort: " + string(s.sort)},
		{Key: "E", Description: "Edit back"},
		{Key: "D", Description: "Delete"},
		{Key: "R", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReviewScreen) load() tea.Msg {
	ctx := context.Background()
	qs, err := s.svc.LoadSettings(ctx)
	if err != nil {
		return notesLoadedMsg{Settings: qs, Err: err}
	}
	notes, err := s.svc.Deck.LoadReviewNotes(ctx, qs.MaxWords, qs.DeckFilter, qs.StoreURL)
	return notesLoadedMsg{Settings: qs, Notes: notes, Err: err}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		s.loaded = true
		s.settings = msg.Settings
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.notes = msg.Notes
		deck.SortNotes(s.notes, s.sort, nil)
		s.selected, s.offset = 0, 0
		return s, nil

	case noteSavedMsg:
		return s.handleSaved(msg)

	case tea.KeyMsg:
		switch s.mode {
		case modeEdit:
			return s.handleEditKey(msg)
		case modeConfirmDelete:
			return s.handleConfirmKey(msg)
		}
		return s.handleListKey(msg)
	}
	return s, nil
}

func (s *ReviewScreen) handleListKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.notes)-1 {
			s.selected++
		}
	case "enter":
		s.expanded = !s.expanded
	case "s":
		s.sort = nextSort(s.sort)
		deck.SortNotes(s.notes, s.sort, nil)
		s.selected, s.offset = 0, 0
	case "r":
		s.loaded = false
		return s, s.load
	case "e":
		if n := s.current(); n != nil {
			s.mode = modeEdit
			s.input = components.NewTextInput("Back", 0)
			s.input.Set(n.Back)
			return s, s.input.Init()
		}
	case "d":
		if s.current() != nil {
			s.mode = modeConfirmDelete
		}
	}
	return s, nil
}

func (s *ReviewScreen) handleEditKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.mode = modeList
		return s, nil
	case "enter":
		n := s.current()
		s.mode = modeList
		if n == nil || s.input.Value() == n.Back {
			return s, nil
		}
		return s, s.saveBack(*n, s.input.Value())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ReviewScreen) handleConfirmKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		s.mode = modeList
		if n := s.current(); n != nil {
			return s, s.deleteNote(n.NoteID)
		}
	case "n", "N", "esc":
		s.mode = modeList
	}
	return s, nil
}

func (s *ReviewScreen) saveBack(n deck.ReviewNote, back string) tea.Cmd {
	field := n.BackFieldName
	if field == "" {
		field = "Back"
	}
	qs := s.settings
	return func() tea.Msg {
		err := s.svc.Deck.SaveField(context.Background(), n.NoteID, map[string]string{field: back}, qs.StoreURL)
		return noteSavedMsg{NoteID: n.NoteID, Back: back, Err: err}
	}
}

func (s *ReviewScreen) deleteNote(id int64) tea.Cmd {
	qs := s.settings
	return func() tea.Msg {
		err := s.svc.Deck.DeleteNote(context.Background(), id, qs.StoreURL)
		return noteSavedMsg{NoteID: id, Deleted: true, Err: err}
	}
}

func (s *ReviewScreen) handleSaved(msg noteSavedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.errMsg = ""
	i := slices.IndexFunc(s.notes, func(n deck.ReviewNote) bool { return n.NoteID == msg.NoteID })
	if i < 0 {
		return s, nil
	}
	if msg.Deleted {
		s.notes = slices.Delete(s.notes, i, i+1)
		s.selected = min(s.selected, max(len(s.notes)-1, 0))
		s.status = "Note deleted."
		return s, nil
	}
	s.notes[i].Back = msg.Back
	s.status = "Saved."
	return s, nil
}

func (s *ReviewScreen) current() *deck.ReviewNote {
	if s.selected < 0 || s.selected >= len(s.notes) {
		return nil
	}
	return &s.notes[s.selected]
}

func nextSort(m deck.SortMode) deck.SortMode {
	i := slices.Index(deck.SortModes, m)
	return deck.SortModes[(i+1)%len(deck.SortModes)]
}

func (s *ReviewScreen) View(width, height int) string {
	if !s.loaded {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("\n\n  Loading notes...")
	}
	if s.errMsg != "" && len(s.notes) == 0 {
		return theme.ErrorText.Width(width).Align(lipgloss.Center).Render("\n\n" + s.errMsg)
	}
	if len(s.notes) == 0 {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("\n\n  No notes matched the deck filter.")
	}

	var b strings.Builder
	b.WriteString(renderGradeCounts(s.notes))
	b.WriteString("\n\n")

	reserved := 4
	if s.expanded || s.mode != modeList {
		reserved += 4
	}
	rows := max(height-reserved, 1)
	s.scrollTo(rows)

	colWidth := max((width-12)/2, 8)
	end := min(s.offset+rows, len(s.notes))
	for i := s.offset; i < end; i++ {
		n := s.notes[i]
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%-*s  %s",
			colWidth, layout.Truncate(n.Front, colWidth),
			layout.Truncate(n.Back, colWidth))
		b.WriteString(prefix + theme.GradeBadge(n.Stats.Grade) + style.Render(line) + "\n")
	}

	if n := s.current(); n != nil {
		switch s.mode {
		case modeEdit:
			b.WriteString("\n" + theme.Body.Render("Back: ") + s.input.View() + "\n")
		case modeConfirmDelete:
			b.WriteString("\n" + theme.Fail.Render(fmt.Sprintf("Delete %q and all its cards? (y/n)", layout.Truncate(n.Front, 40))) + "\n")
		default:
			if s.expanded {
				b.WriteString("\n" + theme.Hint.Render(n.Stats.Summary) + "\n")
				b.WriteString(theme.Hint.Render(n.Stats.Details) + "\n")
			}
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n" + theme.ErrorText.Render(s.errMsg))
	} else if s.status != "" {
		b.WriteString("\n" + theme.Hint.Render(s.status))
	}
	return b.String()
}

// scrollTo keeps the selected row inside the visible window.
func (s *ReviewScreen) scrollTo(rows int) {
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}
}

func renderGradeCounts(notes []deck.ReviewNote) string {
	counts := map[grading.Grade]int{}
	for _, n := range notes {
		counts[n.Stats.Grade]++
	}
	parts := []string{fmt.Sprintf("  %d notes ", len(notes))}
	for _, g := range []grading.Grade{grading.GradeF, grading.GradeD, grading.GradeC, grading.GradeB, grading.GradeA, grading.GradeS, grading.GradeNew} {
		if counts[g] == 0 {
			continue
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.GradeColor(g)).Render(fmt.Sprintf("%s:%d", g, counts[g])))
	}
	return strings.Join(parts, " ")
}
