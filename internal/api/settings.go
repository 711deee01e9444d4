package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/abhisek/ankiquiz/internal/settings"
)

// maxPromptsSize bounds an uploaded prompts file.
const maxPromptsSize = 1 << 20

func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, qs.Redacted())
}

// PutSettings replaces the settings. Fields left out keep their current
// values, and a masked API key (as returned by GET) leaves the key as is.
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	next := current
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}
	if strings.HasPrefix(next.APIKey, "********") {
		next.APIKey = current.APIKey
	}
	if err := next.Validate(); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if err := settings.Save(r.Context(), s.settings, next); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, next.Redacted())
}

// ImportPrompts installs a prompts bundle from the raw request body. The
// filename query parameter selects JSON or YAML by extension.
func (s *Server) ImportPrompts(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxPromptsSize))
	if err != nil {
		badRequest(w, r, "could not read request body")
		return
	}
	pc, err := settings.ParsePromptsConfig(r.URL.Query().Get("filename"), data)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	qs, err := s.loadSettings(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	qs.PromptsConfig = pc
	if err := settings.Save(r.Context(), s.settings, qs); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}
