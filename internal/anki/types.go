package anki

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a scheduling value reported by the store. The store normally
// sends integers, but older add-on versions and re-imported collections can
// carry strings or nulls. Values that do not parse as a finite number are
// kept as invalid rather than coerced to zero.
type Number struct {
	Value float64
	Valid bool
}

// N returns a valid Number.
func N(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// String formats the number without trailing zeros, or "-" when invalid.
func (n Number) String() string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// CardType is the scheduling type of a card.
type CardType int

const (
	CardTypeUnknown    CardType = -1
	CardTypeNew        CardType = 0
	CardTypeLearning   CardType = 1
	CardTypeReview     CardType = 2
	CardTypeRelearning CardType = 3
)

func (t *CardType) UnmarshalJSON(data []byte) error {
	var n Number
	_ = n.UnmarshalJSON(data)
	if !n.Valid {
		*t = CardTypeUnknown
		return nil
	}
	*t = CardType(int(n.Value))
	return nil
}

func (t CardType) String() string {
	switch t {
	case CardTypeNew:
		return "new"
	case CardTypeLearning:
		return "learning"
	case CardTypeReview:
		return "review"
	case CardTypeRelearning:
		return "relearning"
	default:
		return "unknown"
	}
}

// CardQueue is the queue a card currently sits in. Negative values are
// suspended or buried cards.
type CardQueue int

const (
	QueueUnknown     CardQueue = -99
	QueueUserBuried  CardQueue = -3
	QueueSchedBuried CardQueue = -2
	QueueSuspended   CardQueue = -1
	QueueNew         CardQueue = 0
	QueueLearning    CardQueue = 1
	QueueReview      CardQueue = 2
	QueueDayLearning CardQueue = 3
	QueuePreview     CardQueue = 4
)

func (q *CardQueue) UnmarshalJSON(data []byte) error {
	var n Number
	_ = n.UnmarshalJSON(data)
	if !n.Valid {
		*q = QueueUnknown
		return nil
	}
	*q = CardQueue(int(n.Value))
	return nil
}

// CardInfo is one physical card as returned by the cardsInfo action.
type CardInfo struct {
	CardID   int64     `json:"cardId"`
	Note     int64     `json:"note"`
	DeckName string    `json:"deckName"`
	Interval Number    `json:"interval"`
	Factor   Number    `json:"factor"`
	Reps     Number    `json:"reps"`
	Lapses   Number    `json:"lapses"`
	Type     CardType  `json:"type"`
	Queue    CardQueue `json:"queue"`
	Due      Number    `json:"due"`
}

// UnmarshalJSON defaults type and queue to unknown when the store omits
// them, so a sparse record is never mistaken for a new card.
func (c *CardInfo) UnmarshalJSON(data []byte) error {
	type plain CardInfo
	p := plain{Type: CardTypeUnknown, Queue: QueueUnknown}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CardInfo(p)
	return nil
}

// IsNew reports whether the store flags the card as new by queue or type.
func (c CardInfo) IsNew() bool {
	return c.Queue == QueueNew || c.Type == CardTypeNew
}

// FieldValue is a single note field with its position in the note model.
type FieldValue struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteInfo is one note as returned by the notesInfo action.
type NoteInfo struct {
	NoteID    int64                 `json:"noteId"`
	ModelName string                `json:"modelName"`
	Tags      []string              `json:"tags"`
	Fields    map[string]FieldValue `json:"fields"`
	Cards     []int64               `json:"cards"`
}

// NewNote is the payload of the addNote action.
type NewNote struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
}
