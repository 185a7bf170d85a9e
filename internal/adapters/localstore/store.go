// Package localstore keeps the planner's collections in a directory of JSON
// files, one per key, standing in for the browser's localStorage.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
)

// Persisted keys.
const (
	KeyTasks    = "tasksByDay"
	KeyNotes    = "notes"
	KeyProjects = "projects"
	KeyLanguage = "appLanguage"
	KeyDeviceID = "deviceId"
)

// DefaultQuotaBytes matches the usual browser localStorage budget.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

const fileSuffix = ".json"

// Store implements ports.LocalStore and ports.KeyValueStore.
type Store struct {
	dir    string
	quota  int64
	logger *logger.Logger

	mu sync.Mutex
}

// New creates a Store rooted at dir. The directory is created on first
// write. A non-positive quota falls back to DefaultQuotaBytes.
func New(dir string, quota int64, log *logger.Logger) *Store {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &Store{
		dir:    dir,
		quota:  quota,
		logger: log.WithComponent("localstore"),
	}
}

// LoadTasks returns the stored task buckets, empty when missing or corrupt.
func (s *Store) LoadTasks(ctx context.Context) entities.TasksByDay {
	tasks := entities.TasksByDay{}
	if !s.load(KeyTasks, &tasks) || tasks == nil {
		return entities.TasksByDay{}
	}
	return tasks
}

// SaveTasks replaces the stored task buckets.
func (s *Store) SaveTasks(ctx context.Context, tasks entities.TasksByDay) error {
	if tasks == nil {
		tasks = entities.TasksByDay{}
	}
	return s.save(KeyTasks, tasks)
}

// LoadNotes returns the stored notes, empty when missing or corrupt.
func (s *Store) LoadNotes(ctx context.Context) []entities.Note {
	var notes []entities.Note
	if !s.load(KeyNotes, &notes) || notes == nil {
		return []entities.Note{}
	}
	return notes
}

// SaveNotes replaces the stored notes.
func (s *Store) SaveNotes(ctx context.Context, notes []entities.Note) error {
	if notes == nil {
		notes = []entities.Note{}
	}
	return s.save(KeyNotes, notes)
}

// LoadProjects returns the stored projects, empty when missing or corrupt.
func (s *Store) LoadProjects(ctx context.Context) []entities.Project {
	var projects []entities.Project
	if !s.load(KeyProjects, &projects) || projects == nil {
		return []entities.Project{}
	}
	return projects
}

// SaveProjects replaces the stored projects.
func (s *Store) SaveProjects(ctx context.Context, projects []entities.Project) error {
	if projects == nil {
		projects = []entities.Project{}
	}
	return s.save(KeyProjects, projects)
}

// LoadPreferences returns the locally known preferences. Only the language
// is kept locally.
func (s *Store) LoadPreferences(ctx context.Context) entities.Preferences {
	var lang string
	if !s.load(KeyLanguage, &lang) || lang == "" {
		return entities.Preferences{}
	}
	return entities.Preferences{"language": lang}
}

// SavePreferences stores the preferred language.
func (s *Store) SavePreferences(ctx context.Context, prefs entities.Preferences) error {
	return s.save(KeyLanguage, prefs.Language())
}

// Get reads a string value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	var value string
	if !s.load(key, &value) {
		return "", false
	}
	return value, true
}

// Set stores a string value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.save(key, value)
}

// Usage returns the bytes currently held across every key.
func (s *Store) Usage() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage("")
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

// load decodes key into out and reports whether a usable value was found.
func (s *Store) load(key string, out any) bool {
	s.mu.Lock()
	content, err := os.ReadFile(s.path(key))
	s.mu.Unlock()

	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnw("Failed to read local key", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(content, out); err != nil {
		s.logger.Warnw("Discarding corrupt local key", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) save(key string, value any) error {
	content, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	others, err := s.usage(key)
	if err != nil {
		return err
	}
	if others+int64(len(content)) > s.quota {
		return fmt.Errorf("save %s (%d bytes): %w", key, len(content), entities.ErrQuotaExceeded)
	}

	// Write to temp file first, then rename for atomicity
	target := s.path(key)
	tmpPath := target + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// usage sums the size of every stored key except skip. Callers hold mu.
func (s *Store) usage(skip string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read directory: %w", err)
	}

	var total int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != fileSuffix || name == skip+fileSuffix {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
