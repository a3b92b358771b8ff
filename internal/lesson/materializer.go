// Package lesson turns raw generateLesson tool output into validated,
// persisted lessons. Materialization is idempotent per source message: the
// same chat message never yields duplicate lessons no matter how many times
// the client replays it.
package lesson

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/internal/store"
	"github.com/finpal/finpal-go/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Materializer struct {
	store  store.Store
	logger *zap.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMaterializer(s store.Store, logger *zap.Logger) *Materializer {
	return &Materializer{
		store:  s,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Draft is the lesson payload as the model emits it, before an ID or
// timestamp exists.
type Draft struct {
	Topic     string                `json:"topic"`
	Type      domain.LessonType     `json:"type"`
	Content   string                `json:"content"`
	Questions []domain.QuizQuestion `json:"questions,omitempty"`
}

// Materialize validates the drafts produced by one assistant message and
// appends them to the stored lesson list. A message ID that was already
// materialized is a no-op returning the empty slice. Drafts are processed in
// order; the first invalid draft aborts the whole batch so a partial write
// never happens.
func (m *Materializer) Materialize(ctx context.Context, messageID string, drafts []Draft) ([]domain.Lesson, error) {
	if messageID == "" {
		return nil, errors.NewValidationError("Message ID is required", "messageId", messageID)
	}

	m.mu.Lock()
	if _, dup := m.seen[messageID]; dup {
		m.mu.Unlock()
		m.logger.Debug("Skipping already-materialized message", zap.String("message_id", messageID))
		return []domain.Lesson{}, nil
	}
	m.seen[messageID] = struct{}{}
	m.mu.Unlock()

	lessons := make([]domain.Lesson, 0, len(drafts))
	now := time.Now()
	for i, draft := range drafts {
		lesson, err := m.build(draft, now)
		if err != nil {
			m.forget(messageID)
			return nil, fmt.Errorf("lesson %d: %w", i, err)
		}
		lessons = append(lessons, lesson)
	}

	if len(lessons) == 0 {
		return lessons, nil
	}

	existing, err := m.store.LoadLessons(ctx)
	if err != nil {
		m.forget(messageID)
		return nil, err
	}
	if err := m.store.SaveLessons(ctx, append(existing, lessons...)); err != nil {
		m.forget(messageID)
		return nil, err
	}

	m.logger.Info("Materialized lessons",
		zap.String("message_id", messageID),
		zap.Int("count", len(lessons)),
	)
	return lessons, nil
}

func (m *Materializer) build(draft Draft, now time.Time) (domain.Lesson, error) {
	lesson := domain.Lesson{
		ID:        uuid.NewString(),
		Title:     draft.Topic,
		Content:   draft.Content,
		Type:      draft.Type,
		CreatedAt: now,
		Topic:     draft.Topic,
		Questions: draft.Questions,
	}

	// Flashcards carry no quiz questions; anything the model attached is
	// dropped rather than rejected.
	if lesson.Type == domain.LessonFlashcard {
		lesson.Questions = nil
	}

	if err := lesson.Validate(); err != nil {
		return domain.Lesson{}, err
	}
	return lesson, nil
}

// forget releases a message ID after a failed batch so the client can retry.
func (m *Materializer) forget(messageID string) {
	m.mu.Lock()
	delete(m.seen, messageID)
	m.mu.Unlock()
}
