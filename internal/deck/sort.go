package deck

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/abhisek/ankiquiz/internal/randutil"
)

// SortMode orders review notes.
type SortMode string

const (
	SortRandom    SortMode = "random"
	SortFront     SortMode = "front"
	SortBack      SortMode = "back"
	SortBadFirst  SortMode = "bad-first"
	SortGoodFirst SortMode = "good-first"
)

// SortModes lists every mode in display order.
var SortModes = []SortMode{SortRandom, SortFront, SortBack, SortBadFirst, SortGoodFirst}

// ParseSortMode validates a sort mode name.
func ParseSortMode(s string) (SortMode, error) {
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid sort mode %q", s)
}

// SortNotes orders notes in place. Random shuffles with rng (nil uses the
// global source). The grade orders are stable so equal grades keep their
// loaded order.
func SortNotes(notes []ReviewNote, mode SortMode, rng *rand.Rand) {
	switch mode {
	case SortRandom:
		randutil.Shuffle(rng, notes)
	case SortFront:
		slices.SortStableFunc(notes, func(a, b ReviewNote) int {
			return strings.Compare(strings.ToLower(a.Front), strings.ToLower(b.Front))
		})
	case SortBack:
		slices.SortStableFunc(notes, func(a, b ReviewNote) int {
			return strings.Compare(strings.ToLower(a.Back), strings.ToLower(b.Back))
		})
	case SortBadFirst:
		slices.SortStableFunc(notes, func(a, b ReviewNote) int {
			return a.Stats.Grade.Rank() - b.Stats.Grade.Rank()
		})
	case SortGoodFirst:
		slices.SortStableFunc(notes, func(a, b ReviewNote) int {
			return b.Stats.Grade.Rank() - a.Stats.Grade.Rank()
		})
	}
}
