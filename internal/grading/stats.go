// Package grading turns a note's card scheduling statistics into a single
// proficiency grade.
package grading

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/ankiquiz/internal/anki"
)

// Thresholds used by Compute. Intervals are in days; factors are in
// permille as reported by the store (2500 = 250%).
const (
	FailLapses   = 8
	FailFactor   = 1300
	IntervalD    = 2
	IntervalC    = 7
	IntervalB    = 21
	IntervalA    = 60
	emptySummary = "New Note"
	emptyDetails = "No cards found"
)

// NoteStats is the derived view of a note's cards. It is never persisted.
type NoteStats struct {
	Grade   Grade  `json:"grade"`
	Color   Color  `json:"color"`
	Summary string `json:"summary"`
	Details string `json:"details"`
}

// Aggregate holds the values the grade is decided on. Min values are
// +Inf when no card carried a valid number.
type Aggregate struct {
	MinInterval float64
	MinFactor   float64
	MaxLapses   float64
	SumReviews  float64
	AnyNew      bool
}

// aggregate folds a card set. Invalid numbers are skipped, never read as zero.
func aggregate(cards []anki.CardInfo) Aggregate {
	agg := Aggregate{
		MinInterval: math.Inf(1),
		MinFactor:   math.Inf(1),
	}
	for _, c := range cards {
		if c.IsNew() {
			agg.AnyNew = true
		}
		if c.Interval.Valid && c.Interval.Value < agg.MinInterval {
			agg.MinInterval = c.Interval.Value
		}
		if c.Factor.Valid && c.Factor.Value < agg.MinFactor {
			agg.MinFactor = c.Factor.Value
		}
		if c.Lapses.Valid && c.Lapses.Value > agg.MaxLapses {
			agg.MaxLapses = c.Lapses.Value
		}
		if c.Reps.Valid {
			agg.SumReviews += c.Reps.Value
		}
	}
	return agg
}

// Decide applies the grade rules in priority order. The first match wins.
func (a Aggregate) Decide() Grade {
	switch {
	case a.AnyNew:
		return GradeNew
	case a.MaxLapses > FailLapses || a.MinFactor < FailFactor:
		return GradeF
	case a.MinInterval < IntervalD:
		return GradeD
	case a.MinInterval < IntervalC:
		return GradeC
	case a.MinInterval < IntervalB:
		return GradeB
	case a.MinInterval < IntervalA:
		return GradeA
	default:
		return GradeS
	}
}

// Compute grades a note from all of its physical cards. The result depends
// only on the input; an empty set is a new note.
func Compute(cards []anki.CardInfo) NoteStats {
	if len(cards) == 0 {
		return NoteStats{
			Grade:   GradeNew,
			Color:   GradeNew.Color(),
			Summary: emptySummary,
			Details: emptyDetails,
		}
	}

	agg := aggregate(cards)
	grade := agg.Decide()

	interval := agg.MinInterval
	if math.IsInf(interval, 1) {
		interval = 0
	}

	return NoteStats{
		Grade:   grade,
		Color:   grade.Color(),
		Summary: fmt.Sprintf("Interval: %s | Reviews: %s", formatFloat(interval), formatFloat(agg.SumReviews)),
		Details: details(cards),
	}
}

func details(cards []anki.CardInfo) string {
	blocks := make([]string, 0, len(cards))
	for _, c := range cards {
		var b strings.Builder
		fmt.Fprintf(&b, "Card %d:\n", c.CardID)
		fmt.Fprintf(&b, "- Interval: %s\n", withSuffix(c.Interval, "d"))
		ease := anki.Number{}
		if c.Factor.Valid {
			ease = anki.N(c.Factor.Value / 10)
		}
		fmt.Fprintf(&b, "- Ease Factor: %s\n", withSuffix(ease, "%"))
		fmt.Fprintf(&b, "- Reviews: %s\n", c.Reps)
		fmt.Fprintf(&b, "- Lapses: %s", c.Lapses)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func withSuffix(n anki.Number, suffix string) string {
	if !n.Valid {
		return n.String()
	}
	return n.String() + suffix
}

func formatFloat(v float64) string {
	return anki.N(v).String()
}
