package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/ui/theme"
)

// ScoreBar shows passed answers out of answered ones as a bar.
type ScoreBar struct {
	Passed   int
	Answered int
	Width    int
}

// Ratio returns the pass ratio, 0 when nothing was answered.
func (s ScoreBar) Ratio() float64 {
	if s.Answered <= 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Answered)
}

// View renders the bar followed by "passed/answered".
func (s ScoreBar) View() string {
	label := fmt.Sprintf("  %d/%d", s.Passed, s.Answered)
	barWidth := max(s.Width-len(label), 4)

	filled := min(max(int(float64(barWidth)*s.Ratio()), 0), barWidth)

	return lipgloss.NewStyle().Background(theme.Success).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
}
