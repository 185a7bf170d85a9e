package ports

import (
	"context"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// DocumentRepository stores one JSON document per entity kind and device.
// It is the backend's only persistence contract; it knows nothing about the
// shape of the documents it holds.
type DocumentRepository interface {
	// Get returns the device's document, or nil when none has been stored.
	Get(ctx context.Context, kind entities.EntityKind, deviceID string) ([]byte, error)
	// Update replaces the device's document with the result of fn, which
	// receives the current document (nil when absent). Implementations run
	// fn under a lock or transaction so concurrent updates do not interleave.
	Update(ctx context.Context, kind entities.EntityKind, deviceID string, fn func(current []byte) ([]byte, error)) error
	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// KeyValueStore is durable local storage addressed by well-known keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// LocalStore mirrors every entity kind into durable local storage. Loads
// never fail: missing or corrupt data yields an empty collection. Saves fail
// with entities.ErrQuotaExceeded when storage is full.
type LocalStore interface {
	LoadTasks(ctx context.Context) entities.TasksByDay
	SaveTasks(ctx context.Context, tasks entities.TasksByDay) error
	LoadNotes(ctx context.Context) []entities.Note
	SaveNotes(ctx context.Context, notes []entities.Note) error
	LoadProjects(ctx context.Context) []entities.Project
	SaveProjects(ctx context.Context, projects []entities.Project) error
	LoadPreferences(ctx context.Context) entities.Preferences
	SavePreferences(ctx context.Context, prefs entities.Preferences) error
}
