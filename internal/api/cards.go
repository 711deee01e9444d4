package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abhisek/ankiquiz/internal/deck"
)

type generateRequest struct {
	Prompt       string           `json:"prompt"`
	ContextCards []deck.VocabItem `json:"contextCards"`
	// IncludeDeck adds the deck's own cards as context.
	IncludeDeck bool `json:"includeDeck"`
}

type saveRequest struct {
	Cards []*deck.GeneratedCard `json:"cards"`
	Deck  string                `json:"deck"`
	Model string                `json:"model"`
}

// cardView is a GeneratedCard with its save error rendered.
type cardView struct {
	*deck.GeneratedCard
	Error string `json:"error,omitempty"`
}

type cardsResponse struct {
	Cards []cardView `json:"cards"`
}

func viewCards(cards []*deck.GeneratedCard) cardsResponse {
	out := cardsResponse{Cards: make([]cardView, len(cards))}
	for i, c := range cards {
		out.Cards[i] = cardView{GeneratedCard: c, Error: c.ErrorText()}
	}
	return out
}

func (s *Server) GenerateCards(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		badRequest(w, r, "prompt is required")
		return
	}

	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	contextCards := req.ContextCards
	if req.IncludeDeck {
		vocab, err := s.deck.LoadVocabulary(r.Context(), qs.MaxWords, qs.DeckFilter, qs.StoreURL)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		contextCards = append(contextCards, vocab...)
	}

	drafts, err := s.cards.GenerateCards(r.Context(), req.Prompt, contextCards, qs)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	cards := make([]*deck.GeneratedCard, len(drafts))
	for i, d := range drafts {
		cards[i] = deck.NewGeneratedCard(d.Front, d.Back)
	}
	writeJSON(w, http.StatusOK, viewCards(cards))
}

// SaveCards saves every unsaved card in the request. Partial failure still
// replies 200; each card reports its own saved flag and error.
func (s *Server) SaveCards(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if len(req.Cards) == 0 {
		badRequest(w, r, "cards is required")
		return
	}
	for _, c := range req.Cards {
		if c == nil {
			badRequest(w, r, "cards must not contain null")
			return
		}
		// Saving is server-side state; a client echo would skip the card.
		c.Saving = false
	}

	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	deckName := req.Deck
	if deckName == "" {
		deckName = qs.DeckName()
	}
	if err := s.deck.SaveCards(r.Context(), req.Cards, deckName, req.Model, qs.StoreURL); err != nil {
		s.logger.Warn("some cards were not saved", "error", err)
	}
	writeJSON(w, http.StatusOK, viewCards(req.Cards))
}
