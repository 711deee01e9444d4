// Package deck assembles vocabulary and review notes from the flashcard
// store and writes edits back to it.
package deck

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/abhisek/ankiquiz/internal/anki"
	"github.com/abhisek/ankiquiz/internal/grading"
	"github.com/abhisek/ankiquiz/internal/randutil"
)

// Store is the subset of the AnkiConnect API the loader needs.
type Store interface {
	Version(ctx context.Context) (int, error)
	FindNotes(ctx context.Context, query string) ([]int64, error)
	NotesInfo(ctx context.Context, ids []int64) ([]anki.NoteInfo, error)
	CardsInfo(ctx context.Context, ids []int64) ([]anki.CardInfo, error)
	ModelFieldNames(ctx context.Context, model string) ([]string, error)
	AddNote(ctx context.Context, note anki.NewNote) (int64, error)
	UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error
	DeleteNotes(ctx context.Context, ids []int64) error
}

// Dialer returns a Store bound to url.
type Dialer func(url string) Store

// VocabItem is one card's two sides as plain text.
type VocabItem struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ReviewNote is a note with its graded statistics, ready for review.
// Field names are kept so edits can be written back to the right field.
type ReviewNote struct {
	NoteID         int64             `json:"noteId"`
	Front          string            `json:"front"`
	FrontFieldName string            `json:"frontFieldName"`
	Back           string            `json:"back"`
	BackFieldName  string            `json:"backFieldName"`
	Tags           []string          `json:"tags"`
	Stats          grading.NoteStats `json:"stats"`
}

// Loader reads and writes notes. The store URL is passed per call since the
// learner can change it between calls.
type Loader struct {
	dial   Dialer
	rng    *rand.Rand
	logger *slog.Logger
	limit  int
}

// Option configures a Loader.
type Option func(*Loader)

// WithDialer replaces how store clients are created.
func WithDialer(d Dialer) Option {
	return func(l *Loader) { l.dial = d }
}

// WithRand makes shuffling reproducible.
func WithRand(r *rand.Rand) Option {
	return func(l *Loader) { l.rng = r }
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loader) { l.logger = lg }
}

// WithSaveConcurrency caps parallel saves in SaveCards. Zero or less means
// one goroutine per card.
func WithSaveConcurrency(n int) Option {
	return func(l *Loader) { l.limit = n }
}

// NewLoader creates a Loader that talks to AnkiConnect over HTTP. clientOpts
// are applied to every client it dials.
func NewLoader(clientOpts []anki.Option, opts ...Option) *Loader {
	l := &Loader{
		logger: slog.Default(),
	}
	l.dial = func(url string) Store {
		return anki.New(url, append([]anki.Option{anki.WithLogger(l.logger)}, clientOpts...)...)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func searchQuery(deckFilter string) string {
	if f := strings.TrimSpace(deckFilter); f != "" {
		return "deck:" + f
	}
	return "*"
}

type orderedField struct {
	name  string
	value string
	order int
}

// orderedFields sorts a note's fields by their position in the model.
// Names break ties so the result never depends on map order.
func orderedFields(note anki.NoteInfo) []orderedField {
	out := make([]orderedField, 0, len(note.Fields))
	for name, f := range note.Fields {
		out = append(out, orderedField{name: name, value: f.Value, order: f.Order})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].order != out[j].order {
			return out[i].order < out[j].order
		}
		return out[i].name < out[j].name
	})
	return out
}

// LoadVocabulary returns up to maxCount notes whose first and second
// fields are both non-empty, in random order. maxCount <= 0 means no limit.
func (l *Loader) LoadVocabulary(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]VocabItem, error) {
	store := l.dial(storeURL)

	ids, err := store.FindNotes(ctx, searchQuery(deckFilter))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	notes, err := store.NotesInfo(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}

	vocab := make([]VocabItem, 0, len(notes))
	for _, n := range notes {
		var front, back string
		for _, f := range n.Fields {
			switch f.Order {
			case 0:
				front = strings.TrimSpace(f.Value)
			case 1:
				back = strings.TrimSpace(f.Value)
			}
		}
		if front != "" && back != "" {
			vocab = append(vocab, VocabItem{Front: front, Back: back})
		}
	}

	vocab = randutil.Sample(l.rng, vocab, maxCount)
	l.logger.Debug("vocabulary loaded", "query", searchQuery(deckFilter), "notes", len(notes), "kept", len(vocab))
	return vocab, nil
}

// LoadReviewNotes samples up to maxCount matching notes and grades each one
// from its cards. Notes with neither side filled in are skipped.
func (l *Loader) LoadReviewNotes(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]ReviewNote, error) {
	store := l.dial(storeURL)

	ids, err := store.FindNotes(ctx, searchQuery(deckFilter))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	ids = randutil.Sample(l.rng, ids, maxCount)

	notes, err := store.NotesInfo(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}

	var cardIDs []int64
	for _, n := range notes {
		cardIDs = append(cardIDs, n.Cards...)
	}
	cardsByID := make(map[int64]anki.CardInfo, len(cardIDs))
	if len(cardIDs) > 0 {
		cards, err := store.CardsInfo(ctx, cardIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch cards: %w", err)
		}
		for _, c := range cards {
			cardsByID[c.CardID] = c
		}
	}

	out := make([]ReviewNote, 0, len(notes))
	for _, n := range notes {
		rn := ReviewNote{NoteID: n.NoteID, Tags: n.Tags}
		fields := orderedFields(n)
		if len(fields) > 0 {
			rn.Front, rn.FrontFieldName = fields[0].value, fields[0].name
		}
		if len(fields) > 1 {
			rn.Back, rn.BackFieldName = fields[1].value, fields[1].name
		}
		if rn.Front == "" && rn.Back == "" {
			continue
		}
		if rn.Tags == nil {
			rn.Tags = []string{}
		}

		var stats []anki.CardInfo
		for _, id := range n.Cards {
			if c, ok := cardsByID[id]; ok {
				stats = append(stats, c)
			}
		}
		rn.Stats = grading.Compute(stats)
		out = append(out, rn)
	}
	return out, nil
}

// SaveField writes a partial field update for one note.
func (l *Loader) SaveField(ctx context.Context, noteID int64, fields map[string]string, storeURL string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := l.dial(storeURL).UpdateNoteFields(ctx, noteID, fields); err != nil {
		return fmt.Errorf("update note %d: %w", noteID, err)
	}
	return nil
}

// DeleteNote removes a note and all of its cards.
func (l *Loader) DeleteNote(ctx context.Context, noteID int64, storeURL string) error {
	if err := l.dial(storeURL).DeleteNotes(ctx, []int64{noteID}); err != nil {
		return fmt.Errorf("delete note %d: %w", noteID, err)
	}
	return nil
}

// Ping checks that the store is reachable and returns its protocol version.
func (l *Loader) Ping(ctx context.Context, storeURL string) (int, error) {
	return l.dial(storeURL).Version(ctx)
}
