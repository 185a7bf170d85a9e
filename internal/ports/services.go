package ports

import (
	"context"
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// RemoteStore is the subset of the backend API the reconciliation layer
// depends on. Every error wraps entities.ErrRemoteUnavailable; retry and
// fallback policy belong to the caller.
type RemoteStore interface {
	Health(ctx context.Context) bool

	GetTasks(ctx context.Context) (entities.TasksByDay, error)
	SaveTasks(ctx context.Context, tasks entities.TasksByDay) error

	GetNotes(ctx context.Context) ([]entities.Note, error)
	SaveNote(ctx context.Context, note entities.Note) (*entities.Note, error)
	DeleteNote(ctx context.Context, id entities.ID) error

	GetProjects(ctx context.Context) ([]entities.Project, error)
	SaveProjects(ctx context.Context, projects []entities.Project) error

	GetPreferences(ctx context.Context) (entities.Preferences, error)
	SavePreferences(ctx context.Context, prefs entities.Preferences) error
}

// Clock abstracts the wall clock so alarms and id generation can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
