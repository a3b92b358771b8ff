package api

import (
	"context"
	"net/http"
)

// SecretMinter mints ephemeral Realtime credentials.
type SecretMinter interface {
	Configured() bool
	MintClientSecret(ctx context.Context) (string, error)
}

// handleVoiceChat hands the browser a fresh ephemeral credential for the
// Realtime API. A new secret is minted per request.
func (s *Server) handleVoiceChat(w http.ResponseWriter, r *http.Request) {
	if !s.voice.Configured() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Internal server error",
			"message": "OpenAI API key is not configured",
		})
		return
	}

	secret, err := s.voice.MintClientSecret(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"value": secret})
}
