package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/abhisek/ankiquiz/internal/session"
	"github.com/abhisek/ankiquiz/internal/settings"
)

type answerRequest struct {
	Answer string `json:"answer"`
}

type advanceRequest struct {
	Input string `json:"input"`
}

type advanceResponse struct {
	Action string           `json:"action"`
	State  session.Snapshot `json:"state"`
}

func (s *Server) QuizState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.machine.Snapshot())
}

// quizAction runs fn with the current settings and replies with the new
// state.
func (s *Server) quizAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, settings.QuizSettings) error) {
	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := fn(r.Context(), qs); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.machine.Snapshot())
}

func (s *Server) QuizQuestion(w http.ResponseWriter, r *http.Request) {
	s.quizAction(w, r, s.machine.RequestQuestion)
}

func (s *Server) QuizSkip(w http.ResponseWriter, r *http.Request) {
	s.quizAction(w, r, s.machine.Skip)
}

func (s *Server) QuizReload(w http.ResponseWriter, r *http.Request) {
	s.quizAction(w, r, s.machine.Reload)
}

func (s *Server) QuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	s.quizAction(w, r, func(ctx context.Context, qs settings.QuizSettings) error {
		return s.machine.SubmitAnswer(ctx, qs, req.Answer)
	})
}

func (s *Server) QuizAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, r, "Invalid request body")
			return
		}
	}
	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	action, err := s.machine.Advance(r.Context(), qs, req.Input)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, advanceResponse{Action: action.String(), State: s.machine.Snapshot()})
}
