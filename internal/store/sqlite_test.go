package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/finpal/finpal-go/internal/domain"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	profile, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if profile != nil {
		t.Fatal("fresh store must have no profile")
	}

	want := &domain.UserProfile{
		Name:     "Arthur",
		Email:    "arthur@example.com",
		Age:      80,
		Country:  domain.CountryAustralia,
		Language: domain.LanguageEnglish,
		Advisor:  domain.AdvisorGreg,
	}
	if err := s.SaveProfile(ctx, want); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	got, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile failed: %v", err)
	}
	if got == nil || *got != *want {
		t.Errorf("LoadProfile = %+v, want %+v", got, want)
	}

	if err := s.DeleteProfile(ctx); err != nil {
		t.Fatalf("DeleteProfile failed: %v", err)
	}
	got, err = s.LoadProfile(ctx)
	if err != nil || got != nil {
		t.Errorf("profile must be gone after delete, got %+v err %v", got, err)
	}
}

func TestSaveLessonsOverwritesWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []domain.Lesson{
		{ID: "a", Title: "A", Content: "a", Type: domain.LessonFlashcard, Topic: "A"},
		{ID: "b", Title: "B", Content: "b", Type: domain.LessonFlashcard, Topic: "B"},
	}
	if err := s.SaveLessons(ctx, first); err != nil {
		t.Fatalf("SaveLessons failed: %v", err)
	}

	second := []domain.Lesson{{ID: "c", Title: "C", Content: "c", Type: domain.LessonFlashcard, Topic: "C"}}
	if err := s.SaveLessons(ctx, second); err != nil {
		t.Fatalf("SaveLessons failed: %v", err)
	}

	got, err := s.LoadLessons(ctx)
	if err != nil {
		t.Fatalf("LoadLessons failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("save must replace the record wholesale, got %+v", got)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	history, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("fresh history must be an empty slice, got %v", history)
	}

	now := time.Now().Truncate(time.Second)
	want := []domain.ChatMessage{
		{ID: "m1", Role: domain.RoleUser, Content: "Hello", Timestamp: now},
		{ID: "m2", Role: domain.RoleAssistant, Content: "Hi there", Timestamp: now},
	}
	if err := s.SaveHistory(ctx, want); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	got, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m1" || got[1].Role != domain.RoleAssistant {
		t.Errorf("LoadHistory = %+v", got)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveProfile(ctx, &domain.UserProfile{Name: "X", Email: "x@example.com", Age: 70, Country: domain.CountryJapan}); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
	if err := s.SaveLessons(ctx, []domain.Lesson{{ID: "a", Content: "a", Type: domain.LessonFlashcard}}); err != nil {
		t.Fatalf("SaveLessons failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	profile, _ := s.LoadProfile(ctx)
	lessons, _ := s.LoadLessons(ctx)
	if profile != nil || len(lessons) != 0 {
		t.Errorf("Clear must wipe all records: profile=%+v lessons=%v", profile, lessons)
	}
}

func TestLoadAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state, err := LoadAll(ctx, s)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if state.Onboarded {
		t.Error("empty store must report not onboarded")
	}
	if state.Lessons == nil || state.History == nil {
		t.Error("LoadAll must normalize nil slices")
	}

	if err := s.SaveProfile(ctx, &domain.UserProfile{Name: "X", Email: "x@example.com", Age: 70, Country: domain.CountryJapan}); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	state, err = LoadAll(ctx, s)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if !state.Onboarded || state.Profile == nil {
		t.Error("store with a profile must report onboarded")
	}
}
