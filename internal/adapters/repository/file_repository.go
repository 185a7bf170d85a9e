package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// documentFiles names the file holding each kind; every file maps a device
// id to that device's document.
var documentFiles = map[entities.EntityKind]string{
	entities.KindTasks:       "tasks.json",
	entities.KindNotes:       "notes.json",
	entities.KindProjects:    "projects.json",
	entities.KindPreferences: "userPrefs.json",
}

// FileDocumentRepository keeps documents in one JSON file per kind under a
// data directory. A missing file reads as an empty document set.
type FileDocumentRepository struct {
	dir string
	mu  sync.Mutex
}

// NewFileDocumentRepository creates a repository rooted at dir.
func NewFileDocumentRepository(dir string) (*FileDocumentRepository, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileDocumentRepository{dir: dir}, nil
}

func (r *FileDocumentRepository) Get(ctx context.Context, kind entities.EntityKind, deviceID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read(kind)
	if err != nil {
		return nil, err
	}
	doc, ok := all[deviceID]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (r *FileDocumentRepository) Update(ctx context.Context, kind entities.EntityKind, deviceID string, fn func(current []byte) ([]byte, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.read(kind)
	if err != nil {
		return err
	}

	var current []byte
	if doc, ok := all[deviceID]; ok {
		current = doc
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	all[deviceID] = json.RawMessage(next)

	return r.write(kind, all)
}

func (r *FileDocumentRepository) Ping(ctx context.Context) error {
	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", r.dir)
	}
	return nil
}

func (r *FileDocumentRepository) path(kind entities.EntityKind) (string, error) {
	name, ok := documentFiles[kind]
	if !ok {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	return filepath.Join(r.dir, name), nil
}

func (r *FileDocumentRepository) read(kind entities.EntityKind) (map[string]json.RawMessage, error) {
	path, err := r.path(kind)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	all := map[string]json.RawMessage{}
	if err := json.Unmarshal(content, &all); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if all == nil {
		all = map[string]json.RawMessage{}
	}
	return all, nil
}

func (r *FileDocumentRepository) write(kind entities.EntityKind, all map[string]json.RawMessage) error {
	path, err := r.path(kind)
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
