package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/ankiquiz/internal/grading"
)

// Color palette
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// gradeColors maps the grade display tags to terminal colors.
var gradeColors = map[grading.Color]color.Color{
	grading.ColorBlue:    lipgloss.Color("#3B82F6"),
	grading.ColorRed:     lipgloss.Color("#EF4444"),
	grading.ColorOrange:  lipgloss.Color("#F97316"),
	grading.ColorYellow:  lipgloss.Color("#EAB308"),
	grading.ColorLime:    lipgloss.Color("#84CC16"),
	grading.ColorGreen:   lipgloss.Color("#22C55E"),
	grading.ColorEmerald: lipgloss.Color("#10B981"),
	grading.ColorGray:    lipgloss.Color("#94A3B8"),
}

// GradeColor returns the terminal color for a grade.
func GradeColor(g grading.Grade) color.Color {
	if c, ok := gradeColors[g.Color()]; ok {
		return c
	}
	return TextDim
}

// GradeBadge renders a grade as a fixed-width colored label.
func GradeBadge(g grading.Grade) string {
	return lipgloss.NewStyle().
		Foreground(GradeColor(g)).
		Bold(true).
		Width(4).
		Render(string(g))
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Pass = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Fail = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)
