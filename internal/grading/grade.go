package grading

// Grade is the ordinal proficiency of a note, from F (weakest) to S, with New
// for notes that have not entered review yet.
type Grade string

const (
	GradeNew Grade = "New"
	GradeF   Grade = "F"
	GradeD   Grade = "D"
	GradeC   Grade = "C"
	GradeB   Grade = "B"
	GradeA   Grade = "A"
	GradeS   Grade = "S"
)

// Color is a display tag for a grade. Renderers map it to real colors.
type Color string

const (
	ColorBlue    Color = "blue"
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorLime    Color = "lime"
	ColorGreen   Color = "green"
	ColorEmerald Color = "emerald"
	ColorGray    Color = "gray"
)

// Color returns the fixed display tag for the grade, or gray for a value
// outside the known set.
func (g Grade) Color() Color {
	switch g {
	case GradeNew:
		return ColorBlue
	case GradeF:
		return ColorRed
	case GradeD:
		return ColorOrange
	case GradeC:
		return ColorYellow
	case GradeB:
		return ColorLime
	case GradeA:
		return ColorGreen
	case GradeS:
		return ColorEmerald
	default:
		return ColorGray
	}
}

// Rank orders grades weakest first: F < D < C < B < A < S < New.
// Unknown grades sort last.
func (g Grade) Rank() int {
	switch g {
	case GradeF:
		return 0
	case GradeD:
		return 1
	case GradeC:
		return 2
	case GradeB:
		return 3
	case GradeA:
		return 4
	case GradeS:
		return 5
	case GradeNew:
		return 6
	default:
		return 7
	}
}

// Valid reports whether g is one of the known grades.
func (g Grade) Valid() bool {
	return g.Rank() < 7
}

// ParseGrade converts a string to a Grade, reporting whether it was known.
func ParseGrade(s string) (Grade, bool) {
	g := Grade(s)
	return g, g.Valid()
}
