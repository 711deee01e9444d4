package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
	"github.com/abhisek/ankiquiz/internal/store"
	"github.com/abhisek/ankiquiz/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Deck reads and writes notes in the card store.
type Deck interface {
	LoadReviewNotes(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]deck.ReviewNote, error)
	LoadVocabulary(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]deck.VocabItem, error)
	SaveField(ctx context.Context, noteID int64, fields map[string]string, storeURL string) error
	DeleteNote(ctx context.Context, noteID int64, storeURL string) error
	SaveCards(ctx context.Context, cards []*deck.GeneratedCard, deckName, modelName, storeURL string) error
}

// CardGenerator drafts new cards from a request.
type CardGenerator interface {
	GenerateCards(ctx context.Context, prompt string, contextCards []deck.VocabItem, s settings.QuizSettings) ([]quizgen.CardDraft, error)
}

// Services is what screens share. Events may be nil.
type Services struct {
	Machine  *session.Machine
	Deck     Deck
	Cards    CardGenerator
	Settings settings.BlobStore
	Events   store.EventRepo
}

// LoadSettings reads the current settings, falling back to defaults when
// nothing can be read.
func (s Services) LoadSettings(ctx context.Context) (settings.QuizSettings, error) {
	if s.Settings == nil {
		return settings.Defaults(), nil
	}
	return settings.Load(ctx, s.Settings)
}

// InputCapturer is an optional interface for screens that sometimes need
// Esc for themselves, such as to cancel an edit.
type InputCapturer interface {
	CapturingInput() bool
}
