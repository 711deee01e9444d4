// Package api exposes the quiz, review and card generation flows over HTTP
// for an external UI.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/ankiquiz/internal/deck"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
)

// Deck is the store-facing half of the API.
type Deck interface {
	LoadVocabulary(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]deck.VocabItem, error)
	LoadReviewNotes(ctx context.Context, maxCount int, deckFilter, storeURL string) ([]deck.ReviewNote, error)
	SaveField(ctx context.Context, noteID int64, fields map[string]string, storeURL string) error
	DeleteNote(ctx context.Context, noteID int64, storeURL string) error
	SaveCards(ctx context.Context, cards []*deck.GeneratedCard, deckName, modelName, storeURL string) error
}

// CardGenerator writes new cards from a free-form request.
type CardGenerator interface {
	GenerateCards(ctx context.Context, prompt string, contextCards []deck.VocabItem, s settings.QuizSettings) ([]quizgen.CardDraft, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	machine  *session.Machine
	deck     Deck
	cards    CardGenerator
	settings settings.BlobStore
	logger   *slog.Logger
}

// NewServer wires a Server. The machine is shared by every client.
func NewServer(machine *session.Machine, d Deck, cards CardGenerator, bs settings.BlobStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{machine: machine, deck: d, cards: cards, settings: bs, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", s.QuizState)
			r.Post("/question", s.QuizQuestion)
			r.Post("/answer", s.QuizAnswer)
			r.Post("/skip", s.QuizSkip)
			r.Post("/advance", s.QuizAdvance)
			r.Post("/reload", s.QuizReload)
		})

		r.Get("/review/notes", s.ReviewNotes)

		r.Route("/notes/{id}", func(r chi.Router) {
			r.Put("/fields", s.UpdateNoteFields)
			r.Delete("/", s.DeleteNote)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/generate", s.GenerateCards)
			r.Post("/save", s.SaveCards)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.GetSettings)
			r.Put("/", s.PutSettings)
			r.Post("/prompts", s.ImportPrompts)
		})
	})

	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}

// loadSettings reads the current settings for a request.
func (s *Server) loadSettings(ctx context.Context) (settings.QuizSettings, error) {
	return settings.Load(ctx, s.settings)
}
