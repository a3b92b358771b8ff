// Package store persists the three client records (user profile, lesson
// list, chat history) as whole-record JSON snapshots: loaded wholesale at
// startup, overwritten wholesale on every mutation. There is no schema
// versioning and no partial update; this mirrors the single-user,
// device-local storage model the app is built around.
package store

import (
	"context"

	"github.com/finpal/finpal-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
)

// Snapshot record keys.
const (
	RecordProfile = "userProfile"
	RecordLessons = "lessons"
	RecordHistory = "chatHistory"
)

type Store interface {
	// LoadProfile returns nil (no error) when no profile has been saved yet.
	LoadProfile(ctx context.Context) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
	DeleteProfile(ctx context.Context) error

	LoadLessons(ctx context.Context) ([]domain.Lesson, error)
	SaveLessons(ctx context.Context, lessons []domain.Lesson) error

	LoadHistory(ctx context.Context) ([]domain.ChatMessage, error)
	SaveHistory(ctx context.Context, history []domain.ChatMessage) error

	// Clear removes all three records (logout).
	Clear(ctx context.Context) error
	Close() error
}

// AppState is the wholesale view of everything persisted, as the client
// loads it at startup.
type AppState struct {
	Profile   *domain.UserProfile  `json:"profile"`
	Lessons   []domain.Lesson      `json:"lessons"`
	History   []domain.ChatMessage `json:"chatHistory"`
	Onboarded bool                 `json:"isOnboarded"`
}

// LoadAll fetches the three records concurrently.
func LoadAll(ctx context.Context, s Store) (*AppState, error) {
	state := &AppState{}

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		profile, err := s.LoadProfile(ctx)
		if err != nil {
			return err
		}
		state.Profile = profile
		return nil
	})
	p.Go(func(ctx context.Context) error {
		lessons, err := s.LoadLessons(ctx)
		if err != nil {
			return err
		}
		state.Lessons = lessons
		return nil
	})
	p.Go(func(ctx context.Context) error {
		history, err := s.LoadHistory(ctx)
		if err != nil {
			return err
		}
		state.History = history
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	state.Onboarded = state.Profile != nil
	if state.Lessons == nil {
		state.Lessons = []domain.Lesson{}
	}
	if state.History == nil {
		state.History = []domain.ChatMessage{}
	}
	return state, nil
}
