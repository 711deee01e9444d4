package deck

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/ankiquiz/internal/anki"
)

// DefaultModel is the note type generated cards are added as.
const DefaultModel = "Basic"

// GeneratedCard is a card proposed by the model. Each card carries its own
// save state; SaveCards only ever touches the card it is saving.
type GeneratedCard struct {
	ID         string   `json:"id"`
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	NoteID     int64    `json:"noteId,omitempty"`
	FieldNames []string `json:"fieldNames,omitempty"`
	Saving     bool     `json:"saving"`
	Saved      bool     `json:"saved"`
	Err        error    `json:"-"`
}

// NewGeneratedCard creates an unsaved card with a fresh ID.
func NewGeneratedCard(front, back string) *GeneratedCard {
	return &GeneratedCard{ID: uuid.NewString(), Front: front, Back: back}
}

// Edit replaces the card's text and marks it unsaved.
func (c *GeneratedCard) Edit(front, back string) {
	c.Front, c.Back = front, back
	c.Saved = false
}

// ErrorText returns the last save error, or "".
func (c *GeneratedCard) ErrorText() string {
	if c.Err == nil {
		return ""
	}
	return c.Err.Error()
}

// SaveCards saves every unsaved card concurrently. A card that was saved
// before is updated in place; otherwise a new note is added to deckName
// using modelName. Failures are recorded on the failing card only and
// joined into the returned error.
func (l *Loader) SaveCards(ctx context.Context, cards []*GeneratedCard, deckName, modelName, storeURL string) error {
	if modelName == "" {
		modelName = DefaultModel
	}
	if deckName == "" {
		deckName = "Default"
	}
	store := l.dial(storeURL)

	var g errgroup.Group
	if l.limit > 0 {
		g.SetLimit(l.limit)
	}
	for _, card := range cards {
		if card == nil || card.Saved || card.Saving {
			continue
		}
		card.Saving = true
		card.Err = nil
		g.Go(func() error {
			err := l.saveCard(ctx, store, card, deckName, modelName)
			card.Saving = false
			card.Saved = err == nil
			card.Err = err
			if err != nil {
				l.logger.Warn("card save failed", "card", card.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, card := range cards {
		if card != nil && card.Err != nil {
			errs = append(errs, fmt.Errorf("card %q: %w", card.Front, card.Err))
		}
	}
	return errors.Join(errs...)
}

func (l *Loader) saveCard(ctx context.Context, store Store, card *GeneratedCard, deckName, modelName string) error {
	if card.NoteID != 0 {
		fields := map[string]string{"Front": card.Front, "Back": card.Back}
		if len(card.FieldNames) >= 2 {
			fields = map[string]string{card.FieldNames[0]: card.Front, card.FieldNames[1]: card.Back}
		}
		return store.UpdateNoteFields(ctx, card.NoteID, fields)
	}

	names, err := store.ModelFieldNames(ctx, modelName)
	if err != nil {
		return err
	}
	if len(names) < 2 {
		return fmt.Errorf("model %s does not have enough fields", modelName)
	}

	id, err := store.AddNote(ctx, anki.NewNote{
		DeckName:  deckName,
		ModelName: modelName,
		Fields:    map[string]string{names[0]: card.Front, names[1]: card.Back},
		Tags:      []string{},
	})
	if err != nil {
		return err
	}
	card.NoteID = id
	card.FieldNames = names
	return nil
}
