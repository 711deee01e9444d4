package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/ankiquiz/internal/deck"
)

type reviewResponse struct {
	Sort  deck.SortMode     `json:"sort"`
	Notes []deck.ReviewNote `json:"notes"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

// ReviewNotes returns graded notes. Query: sort (random|front|back|
// bad-first|good-first, default random), limit (default maxWords).
func (s *Server) ReviewNotes(w http.ResponseWriter, r *http.Request) {
	mode := deck.SortRandom
	if v := r.URL.Query().Get("sort"); v != "" {
		m, err := deck.ParseSortMode(v)
		if err != nil {
			badRequest(w, r, err.Error())
			return
		}
		mode = m
	}

	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	limit := qs.MaxWords
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, r, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	notes, err := s.deck.LoadReviewNotes(r.Context(), limit, qs.DeckFilter, qs.StoreURL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	deck.SortNotes(notes, mode, nil)
	if notes == nil {
		notes = []deck.ReviewNote{}
	}
	writeJSON(w, http.StatusOK, reviewResponse{Sort: mode, Notes: notes})
}

func noteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) UpdateNoteFields(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		badRequest(w, r, "invalid note id")
		return
	}
	var req fieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if len(req.Fields) == 0 {
		badRequest(w, r, "fields is required")
		return
	}

	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.deck.SaveField(r.Context(), id, req.Fields, qs.StoreURL); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(r)
	if !ok {
		badRequest(w, r, "invalid note id")
		return
	}
	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.deck.DeleteNote(r.Context(), id, qs.StoreURL); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
