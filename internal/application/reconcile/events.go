package reconcile

import (
	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// EventType identifies what an observer is told about.
type EventType string

const (
	TasksChanged       EventType = "tasks_changed"
	NotesChanged       EventType = "notes_changed"
	ProjectsChanged    EventType = "projects_changed"
	PreferencesChanged EventType = "preferences_changed"
	NoteAlarm          EventType = "note_alarm"
	PersistenceWarning EventType = "persistence_warning"
)

// Event is delivered to observers after the change it describes has been
// applied in memory.
type Event struct {
	Type EventType
	Kind entities.EntityKind
	Note *entities.Note
	Err  error
}

// Subscribe registers fn for every future event. Observers run on the
// goroutine that caused the event and must not call back into Apply.
func (s *Session) Subscribe(fn func(Event)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Session) emit(ev Event) {
	s.obsMu.RLock()
	observers := append([]func(Event){}, s.observers...)
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(ev)
	}
}
