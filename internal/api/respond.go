package api

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/ankiquiz/internal/anki"
	"github.com/abhisek/ankiquiz/internal/llm"
	"github.com/abhisek/ankiquiz/internal/quizgen"
	"github.com/abhisek/ankiquiz/internal/session"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError describes what went wrong.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) ErrorResponse {
	return ErrorResponse{Error: APIError{
		Code:      code,
		Message:   message,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", message, r))
}

// handleError maps domain errors to a status and code. The message always
// carries the full error so the user can self-diagnose.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	resp := errorResp(code, err.Error(), r)

	var pe *quizgen.ParseError
	if errors.As(err, &pe) {
		resp.Error.Detail = pe.Excerpt()
	}
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	var (
		connErr  *anki.ConnectionError
		protoErr *anki.ProtocolError
		parseErr *quizgen.ParseError
		unauth   *llm.ErrUnauthorized
		rate     *llm.ErrRateLimit
	)
	switch {
	case errors.Is(err, session.ErrEmptyAnswer):
		return http.StatusBadRequest, "EMPTY_ANSWER"
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "BUSY"
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, session.ErrNoVocabulary):
		return http.StatusUnprocessableEntity, "NO_VOCABULARY"
	case errors.Is(err, quizgen.ErrAuth), errors.As(err, &unauth):
		return http.StatusUnauthorized, "AUTH_ERROR"
	case errors.As(err, &connErr):
		return http.StatusBadGateway, "STORE_UNREACHABLE"
	case errors.As(err, &protoErr):
		return http.StatusBadGateway, "STORE_ERROR"
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, "PARSE_ERROR"
	case errors.As(err, &rate):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
