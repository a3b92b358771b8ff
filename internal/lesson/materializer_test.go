package lesson

import (
	"context"
	"fmt"
	"testing"

	"github.com/finpal/finpal-go/internal/domain"
	"go.uber.org/zap"
)

// fakeStore implements store.Store in memory, with an injectable save error.
type fakeStore struct {
	profile *domain.UserProfile
	lessons []domain.Lesson
	history []domain.ChatMessage
	saveErr error
}

func (f *fakeStore) LoadProfile(context.Context) (*domain.UserProfile, error) { return f.profile, nil }
func (f *fakeStore) SaveProfile(_ context.Context, p *domain.UserProfile) error {
	f.profile = p
	return nil
}
func (f *fakeStore) DeleteProfile(context.Context) error { f.profile = nil; return nil }

func (f *fakeStore) LoadLessons(context.Context) ([]domain.Lesson, error) { return f.lessons, nil }
func (f *fakeStore) SaveLessons(_ context.Context, lessons []domain.Lesson) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.lessons = lessons
	return nil
}

func (f *fakeStore) LoadHistory(context.Context) ([]domain.ChatMessage, error) { return f.history, nil }
func (f *fakeStore) SaveHistory(_ context.Context, history []domain.ChatMessage) error {
	f.history = history
	return nil
}

func (f *fakeStore) Clear(context.Context) error {
	f.profile, f.lessons, f.history = nil, nil, nil
	return nil
}
func (f *fakeStore) Close() error { return nil }

func quizDraft(topic string) Draft {
	return Draft{
		Topic:   topic,
		Type:    domain.LessonQuiz,
		Content: "quiz content",
		Questions: []domain.QuizQuestion{{
			Question:      "What is inflation?",
			Options:       []string{"Rising prices", "Falling prices"},
			CorrectAnswer: 0,
			Explanation:   "Inflation is a general rise in prices.",
		}},
	}
}

func TestMaterializeAssignsIdentityAndPersists(t *testing.T) {
	st := &fakeStore{}
	m := NewMaterializer(st, zap.NewNop())

	created, err := m.Materialize(context.Background(), "msg-1", []Draft{quizDraft("Inflation")})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(created))
	}
	if created[0].ID == "" {
		t.Error("lesson must get a generated ID")
	}
	if created[0].CreatedAt.IsZero() {
		t.Error("lesson must get a creation timestamp")
	}
	if created[0].Title != "Inflation" || created[0].Topic != "Inflation" {
		t.Errorf("title/topic = %q/%q", created[0].Title, created[0].Topic)
	}
	if len(st.lessons) != 1 {
		t.Fatalf("store must hold 1 lesson, has %d", len(st.lessons))
	}
}

func TestMaterializeIsIdempotentPerMessage(t *testing.T) {
	st := &fakeStore{}
	m := NewMaterializer(st, zap.NewNop())

	if _, err := m.Materialize(context.Background(), "msg-1", []Draft{quizDraft("A")}); err != nil {
		t.Fatalf("first Materialize failed: %v", err)
	}

	replay, err := m.Materialize(context.Background(), "msg-1", []Draft{quizDraft("A")})
	if err != nil {
		t.Fatalf("replay must not fail: %v", err)
	}
	if len(replay) != 0 {
		t.Errorf("replay must create nothing, got %d", len(replay))
	}
	if len(st.lessons) != 1 {
		t.Errorf("store must still hold 1 lesson, has %d", len(st.lessons))
	}
}

func TestMaterializePreservesDraftOrder(t *testing.T) {
	st := &fakeStore{}
	m := NewMaterializer(st, zap.NewNop())

	drafts := []Draft{quizDraft("First"), quizDraft("Second"), quizDraft("Third")}
	created, err := m.Materialize(context.Background(), "msg-1", drafts)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if created[i].Topic != want {
			t.Errorf("lesson %d topic = %q, want %q", i, created[i].Topic, want)
		}
	}
}

func TestMaterializeRejectsQuizWithoutQuestions(t *testing.T) {
	st := &fakeStore{}
	m := NewMaterializer(st, zap.NewNop())

	draft := quizDraft("Empty")
	draft.Questions = nil
	if _, err := m.Materialize(context.Background(), "msg-1", []Draft{draft}); err == nil {
		t.Fatal("quiz without questions must be rejected")
	}
	if len(st.lessons) != 0 {
		t.Error("failed batch must not write anything")
	}

	// The rejected message ID stays usable for a corrected retry.
	if _, err := m.Materialize(context.Background(), "msg-1", []Draft{quizDraft("Fixed")}); err != nil {
		t.Fatalf("retry after rejection must succeed: %v", err)
	}
}

func TestMaterializeStripsFlashcardQuestions(t *testing.T) {
	st := &fakeStore{}
	m := NewMaterializer(st, zap.NewNop())

	draft := Draft{
		Topic:     "Savings",
		Type:      domain.LessonFlashcard,
		Content:   "Pay yourself first.",
		Questions: quizDraft("x").Questions,
	}
	created, err := m.Materialize(context.Background(), "msg-1", []Draft{draft})
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(created[0].Questions) != 0 {
		t.Error("flashcard questions must be dropped, not kept")
	}
}

func TestMaterializeAppendsToExistingLessons(t *testing.T) {
	st := &fakeStore{lessons: []domain.Lesson{{ID: "existing", Type: domain.LessonFlashcard, Content: "old"}}}
	m := NewMaterializer(st, zap.NewNop())

	if _, err := m.Materialize(context.Background(), "msg-2", []Draft{quizDraft("New")}); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if len(st.lessons) != 2 || st.lessons[0].ID != "existing" {
		t.Errorf("new lessons must append after existing ones: %v", st.lessons)
	}
}

func TestMaterializeReleasesMessageOnStoreFailure(t *testing.T) {
	st := &fakeStore{saveErr: fmt.Errorf("disk full")}
	m := NewMaterializer(st, zap.NewNop())

	if _, err := m.Materialize(context.Background(), "msg-1", []Draft{quizDraft("A")}); err == nil {
		t.Fatal("store failure must propagate")
	}

	st.saveErr = nil
	created, err := m.Materialize(context.Background(), "msg-1", []Draft{quizDraft("A")})
	if err != nil {
		t.Fatalf("retry after store failure must succeed: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("retry must create the lesson, got %d", len(created))
	}
}

func TestMaterializeRequiresMessageID(t *testing.T) {
	m := NewMaterializer(&fakeStore{}, zap.NewNop())
	if _, err := m.Materialize(context.Background(), "", []Draft{quizDraft("A")}); err == nil {
		t.Fatal("empty message ID must be rejected")
	}
}
