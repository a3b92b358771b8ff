package api

import (
	"net/http"

	"github.com/finpal/finpal-go/internal/store"
)

// handleGetState returns everything the client needs to hydrate at startup
// in a single round trip.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := store.LoadAll(r.Context(), s.store)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
