package api

import (
	"encoding/json"
	"net/http"

	"github.com/finpal/finpal-go/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps typed errors to their HTTP status and renders the
// {error, message} body every fault response shares.
func writeError(w http.ResponseWriter, err error) {
	status := errors.StatusOf(err)
	label := "Internal server error"
	if status < 500 {
		label = "Request failed"
	}
	writeJSON(w, status, map[string]any{
		"error":   label,
		"message": err.Error(),
	})
}

func writeBadRequest(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{"error": message}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusBadRequest, body)
}
