package api

import (
	"encoding/json"
	"net/http"

	"github.com/finpal/finpal-go/internal/domain"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.LoadProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "No profile saved"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := profile.Validate(); err != nil {
		writeBadRequest(w, err.Error(), nil)
		return
	}
	if err := s.store.SaveProfile(r.Context(), &profile); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleDeleteProfile is the logout path: it wipes the profile and everything
// derived from it.
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
