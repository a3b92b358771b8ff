package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/finpal/finpal-go/internal/domain"
	"go.uber.org/zap"
)

// TurnRunner is the slice of the orchestrator the chat endpoint needs.
type TurnRunner interface {
	Run(ctx context.Context, req domain.TurnRequest) (<-chan domain.StreamEvent, error)
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
	Profile  *domain.UserProfile  `json:"userProfile"`
}

// handleChat streams one chat turn as server-sent events. A request without a
// profile is rejected up front with the field names that actually arrived, so
// client-side shape mismatches are diagnosable from the 400 body alone.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeBadRequest(w, "Invalid request body", nil)
		return
	}

	var req chatRequest
	for key, value := range raw {
		switch key {
		case "messages":
			if err := json.Unmarshal(value, &req.Messages); err != nil {
				writeBadRequest(w, "Invalid messages field", nil)
				return
			}
		case "userProfile":
			if err := json.Unmarshal(value, &req.Profile); err != nil {
				writeBadRequest(w, "Invalid userProfile field", nil)
				return
			}
		}
	}

	if req.Profile == nil {
		received := make([]string, 0, len(raw))
		for key := range raw {
			received = append(received, key)
		}
		sort.Strings(received)
		writeBadRequest(w, "User profile is required. Please complete onboarding first.", map[string]any{
			"receivedBody": received,
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming not supported"))
		return
	}

	events, err := s.orchestrator.Run(r.Context(), domain.TurnRequest{
		Profile:  req.Profile,
		Messages: req.Messages,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Warn("Failed to encode stream event", zap.Error(err))
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}
