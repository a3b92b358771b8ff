package api

import (
	"encoding/json"
	"net/http"

	"github.com/finpal/finpal-go/internal/domain"
)

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.LoadHistory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// handleSaveHistory replaces the stored conversation wholesale; the client
// owns the canonical copy and pushes it after every turn.
func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var history []domain.ChatMessage
	if err := json.NewDecoder(r.Body).Decode(&history); err != nil {
		writeBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := s.store.SaveHistory(r.Context(), history); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(history)})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SaveHistory(r.Context(), []domain.ChatMessage{}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
