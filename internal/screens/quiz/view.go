package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/ui/components"
	"github.com/abhisek/ankiquiz/internal/ui/layout"
	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

// maxReferenceCards caps the card reference list under the question.
const maxReferenceCards = 8

func (s *QuizScreen) View(width, height int) string {
	snap := s.svc.Machine.Snapshot()
	textWidth := min(width-8, 80)

	var b strings.Builder

	b.WriteString(s.renderInfoLine(snap, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	switch {
	case snap.Phase.InFlight():
		b.WriteString(centered(width, s.spin.View()+" "+inFlightLabel(snap.Phase)))
		b.WriteString("\n\n")
	case snap.Prompt != "":
		b.WriteString(s.block(width, textWidth, snap.Prompt, theme.Body.Bold(true)))
		b.WriteString("\n\n")
	case snap.Phase == session.Idle:
		b.WriteString(centered(width, theme.Hint.Render("Press Enter for a question.")))
		b.WriteString("\n\n")
	}

	switch snap.Phase {
	case session.AwaitingAnswer:
		label := s.settings.PromptsConfig.UILabels.AnswerLabel
		if label == "" {
			label = "Your Answer"
		}
		s.input.SetWidth(textWidth - len(label) - 4)
		b.WriteString(centered(width, label+": "+s.input.View()))
		if tip := s.settings.PromptsConfig.UILabels.Tip; tip != "" {
			b.WriteString("\n")
			b.WriteString(centered(width, theme.Hint.Render(tip)))
		}
	case session.Answered:
		b.WriteString(s.renderResult(snap, width, textWidth))
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width, theme.ErrorText.Width(textWidth).Render(s.errMsg)))
	}

	if s.settings.ShowCardsReference && snap.Phase == session.AwaitingAnswer {
		b.WriteString("\n\n")
		b.WriteString(s.renderReference(width, textWidth))
	}

	return b.String()
}

func (s *QuizScreen) renderInfoLine(snap session.Snapshot, width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %d cards", s.settings.Direction, snap.VocabSize))

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d  ", snap.Round)) +
		components.ScoreBar{Passed: snap.Passed, Answered: snap.Answered, Width: 20}.View()

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad <= 0 {
		return left
	}
	return left + strings.Repeat(" ", pad) + right
}

func (s *QuizScreen) renderResult(snap session.Snapshot, width, textWidth int) string {
	var b strings.Builder

	b.WriteString(s.block(width, textWidth, snap.Answer, theme.Hint))
	b.WriteString("\n\n")

	if snap.Result == "PASS" {
		b.WriteString(centered(width, theme.Pass.Render("PASS")))
	} else {
		b.WriteString(centered(width, theme.Fail.Render("FAIL")))
	}
	b.WriteString("\n\n")

	feedback := snap.Feedback
	if feedback == "" {
		feedback = snap.Raw
	}
	b.WriteString(s.block(width, textWidth, feedback, theme.Body))
	return b.String()
}

func (s *QuizScreen) renderReference(width, textWidth int) string {
	vocab := s.svc.Machine.Vocabulary()
	if len(vocab) == 0 {
		return ""
	}
	var lines []string
	for i, v := range vocab {
		if i == maxReferenceCards {
			lines = append(lines, fmt.Sprintf("… and %d more", len(vocab)-maxReferenceCards))
			break
		}
		lines = append(lines, layout.Truncate(v.Front+" · "+v.Back, textWidth))
	}
	box := theme.Card.Width(textWidth).Render(theme.Hint.Render(strings.Join(lines, "\n")))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

// block renders text wrapped to textWidth, right-aligned for right-to-left
// text and centered on screen.
func (s *QuizScreen) block(width, textWidth int, text string, style lipgloss.Style) string {
	align := lipgloss.Left
	if settings.ResolveTextDirection(text, s.settings.TextDirection) == settings.TextRTL {
		align = lipgloss.Right
	}
	rendered := style.Width(textWidth).Align(align).Render(text)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, rendered)
}

func centered(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

func inFlightLabel(p session.Phase) string {
	switch p {
	case session.VocabLoading:
		return "Loading cards..."
	case session.QuestionPending:
		return "Writing a question..."
	case session.Evaluating:
		return "Checking your answer..."
	}
	return "Working..."
}
