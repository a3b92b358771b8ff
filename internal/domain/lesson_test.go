package domain

import "testing"

func validQuestion() QuizQuestion {
	return QuizQuestion{
		Question:      "What does APR stand for?",
		Options:       []string{"Annual Percentage Rate", "Applied Payment Ratio"},
		CorrectAnswer: 0,
		Explanation:   "APR is the yearly cost of borrowing.",
	}
}

func TestQuizQuestionValidate(t *testing.T) {
	q := validQuestion()
	if err := q.Validate(); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*QuizQuestion)
	}{
		{"empty question", func(q *QuizQuestion) { q.Question = "" }},
		{"single option", func(q *QuizQuestion) { q.Options = []string{"only one"} }},
		{"negative answer index", func(q *QuizQuestion) { q.CorrectAnswer = -1 }},
		{"answer index out of range", func(q *QuizQuestion) { q.CorrectAnswer = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			if err := q.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLessonValidateQuiz(t *testing.T) {
	lesson := Lesson{
		ID:        "l1",
		Title:     "Scam awareness",
		Type:      LessonQuiz,
		Topic:     "Scam awareness",
		Questions: []QuizQuestion{validQuestion()},
	}
	if err := lesson.Validate(); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}

	lesson.Questions = nil
	if err := lesson.Validate(); err == nil {
		t.Fatal("quiz without questions must be rejected")
	}

	bad := validQuestion()
	bad.Options = nil
	lesson.Questions = []QuizQuestion{validQuestion(), bad}
	if err := lesson.Validate(); err == nil {
		t.Fatal("quiz with an invalid question must be rejected")
	}
}

func TestLessonValidateFlashcard(t *testing.T) {
	lesson := Lesson{
		ID:      "l2",
		Title:   "Compound interest",
		Content: "Interest earned on interest.",
		Type:    LessonFlashcard,
		Topic:   "Compound interest",
	}
	if err := lesson.Validate(); err != nil {
		t.Fatalf("valid flashcard rejected: %v", err)
	}

	lesson.Content = "   "
	if err := lesson.Validate(); err == nil {
		t.Fatal("flashcard without content must be rejected")
	}

	lesson.Content = "Interest earned on interest."
	lesson.Questions = []QuizQuestion{validQuestion()}
	if err := lesson.Validate(); err == nil {
		t.Fatal("flashcard carrying questions must be rejected")
	}
}

func TestLessonValidateUnknownType(t *testing.T) {
	lesson := Lesson{ID: "l3", Type: "podcast", Content: "x"}
	if err := lesson.Validate(); err == nil {
		t.Fatal("unknown lesson type must be rejected")
	}
}
