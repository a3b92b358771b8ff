package api

import (
	"encoding/json"
	"net/http"

	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/lesson"
	"github.com/go-chi/chi/v5"
)

type materializeRequest struct {
	MessageID string         `json:"messageId"`
	Lessons   []lesson.Draft `json:"lessons"`
}

func (s *Server) handleGetLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.store.LoadLessons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

// handleMaterializeLessons persists the lesson drafts generated in one
// assistant message. Replaying the same message ID returns an empty list
// instead of duplicating lessons.
func (s *Server) handleMaterializeLessons(w http.ResponseWriter, r *http.Request) {
	var req materializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := s.materializer.Materialize(r.Context(), req.MessageID, req.Lessons)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lessons, err := s.store.LoadLessons(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	remaining := make([]domain.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if l.ID != id {
			remaining = append(remaining, l)
		}
	}
	if len(remaining) == len(lessons) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Lesson not found"})
		return
	}

	if err := s.store.SaveLessons(r.Context(), remaining); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
