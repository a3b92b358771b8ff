package domain

import (
	"fmt"
	"strings"
	"time"
)

type LessonType string

const (
	LessonFlashcard LessonType = "flashcard"
	LessonQuiz      LessonType = "quiz"
)

func (t LessonType) Known() bool {
	return t == LessonFlashcard || t == LessonQuiz
}

// Lesson is a persisted flashcard or quiz derived from a conversation.
// Immutable once created; the only mutation is full removal.
type Lesson struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Type      LessonType     `json:"type"`
	CreatedAt time.Time      `json:"createdAt"`
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions,omitempty"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

func (q *QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("question text is required")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question needs at least 2 options, got %d", len(q.Options))
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("correctAnswer %d out of range for %d options", q.CorrectAnswer, len(q.Options))
	}
	return nil
}

// Validate enforces the lesson invariants: quizzes carry at least one valid
// question, flashcards carry non-empty content and no questions.
func (l *Lesson) Validate() error {
	if !l.Type.Known() {
		return fmt.Errorf("unknown lesson type %q", l.Type)
	}
	switch l.Type {
	case LessonQuiz:
		if len(l.Questions) == 0 {
			return fmt.Errorf("quiz lesson must carry at least one question")
		}
		for i := range l.Questions {
			if err := l.Questions[i].Validate(); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
		}
	case LessonFlashcard:
		if strings.TrimSpace(l.Content) == "" {
			return fmt.Errorf("flashcard lesson must carry non-empty content")
		}
		if len(l.Questions) > 0 {
			return fmt.Errorf("flashcard lesson must not carry questions")
		}
	}
	return nil
}
