package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/finpal/finpal-go/internal/domain"
	"github.com/finpal/finpal-go/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each record as one JSON value in a key/value table.
// Every save replaces the whole record.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStoreError("Failed to open database", "open", "", err)
	}
	// modernc.org/sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite store ready", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return errors.NewStoreError("Failed to create schema", "migrate", "", err)
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, key string, out any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewStoreError("Failed to load record", "load", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, errors.NewStoreError("Failed to decode record", "load", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.NewStoreError("Failed to encode record", "save", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(raw), time.Now().Unix())
	if err != nil {
		return errors.NewStoreError("Failed to save record", "save", key, err)
	}
	return nil
}

func (s *SQLiteStore) delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return errors.NewStoreError("Failed to delete record", "delete", key, err)
	}
	return nil
}

func (s *SQLiteStore) LoadProfile(ctx context.Context) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	found, err := s.load(ctx, RecordProfile, &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil {
		return errors.NewValidationError("Profile is required", "profile", nil)
	}
	return s.save(ctx, RecordProfile, profile)
}

func (s *SQLiteStore) DeleteProfile(ctx context.Context) error {
	return s.delete(ctx, RecordProfile)
}

func (s *SQLiteStore) LoadLessons(ctx context.Context) ([]domain.Lesson, error) {
	var lessons []domain.Lesson
	if _, err := s.load(ctx, RecordLessons, &lessons); err != nil {
		return nil, err
	}
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	return lessons, nil
}

func (s *SQLiteStore) SaveLessons(ctx context.Context, lessons []domain.Lesson) error {
	if lessons == nil {
		lessons = []domain.Lesson{}
	}
	return s.save(ctx, RecordLessons, lessons)
}

func (s *SQLiteStore) LoadHistory(ctx context.Context) ([]domain.ChatMessage, error) {
	var history []domain.ChatMessage
	if _, err := s.load(ctx, RecordHistory, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.ChatMessage{}
	}
	return history, nil
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, history []domain.ChatMessage) error {
	if history == nil {
		history = []domain.ChatMessage{}
	}
	return s.save(ctx, RecordHistory, history)
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return errors.NewStoreError("Failed to clear store", "clear", "", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
