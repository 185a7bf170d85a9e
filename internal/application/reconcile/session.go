// Package reconcile owns the planner's authoritative in-memory state and
// decides where every change is persisted.
package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/ports"
)

// Mode is the session's persistence policy.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeRemote
	ModeLocal
)

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeLocal:
		return "local"
	default:
		return "uninitialized"
	}
}

// Change describes what an Apply callback modified. Notes are persisted
// incrementally on the remote side, so note changes name the note touched.
type Change struct {
	Tasks       bool
	Projects    bool
	Preferences bool
	Notes       bool

	SavedNote    *entities.Note
	DeletedNotes []entities.ID
}

// Any reports whether anything changed.
func (c Change) Any() bool {
	return c.Tasks || c.Projects || c.Preferences || c.Notes
}

// Session is one device's planner state. It is safe for concurrent use.
type Session struct {
	remote ports.RemoteStore
	local  ports.LocalStore
	clock  ports.Clock
	logger *logger.Logger

	mu      sync.Mutex
	mode    Mode
	state   State
	flagged map[string]struct{}

	obsMu     sync.RWMutex
	observers []func(Event)
}

// NewSession creates a session. A nil remote pins the session to local
// storage.
func NewSession(remote ports.RemoteStore, local ports.LocalStore, clock ports.Clock, log *logger.Logger) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Session{
		remote:  remote,
		local:   local,
		clock:   clock,
		logger:  log.WithComponent("reconcile"),
		flagged: make(map[string]struct{}),
		state: State{
			Tasks:    entities.TasksByDay{},
			Notes:    []entities.Note{},
			Projects: []entities.Project{},
			Prefs:    entities.Preferences{},
		},
	}
}

// Start probes the backend once and fixes the session's persistence mode.
func (s *Session) Start(ctx context.Context) Mode {
	mode := ModeLocal
	if s.remote != nil {
		if s.remote.Health(ctx) {
			mode = ModeRemote
		} else {
			s.logger.Warnw("Backend not available, falling back to local storage")
		}
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	s.logger.Infow("Session started", "mode", mode.String())
	return mode
}

// Mode returns the current persistence mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Now returns the session clock's current time.
func (s *Session) Now() time.Time {
	return s.clock.Now()
}

// LoadAll replaces the in-memory state with the persisted one. Kinds load
// in order; the first remote failure moves the session to local mode and
// the remaining kinds come from local storage. Loaded data is normalized and
// the task collection is written back when normalization changed it. The
// returned error only reports that write-back.
func (s *Session) LoadAll(ctx context.Context) error {
	remoteOK := s.Mode() == ModeRemote

	var st State
	for _, kind := range entities.Kinds {
		if remoteOK {
			err := s.loadRemote(ctx, kind, &st)
			if err == nil {
				continue
			}
			s.logger.Warnw("Remote load failed, switching to local storage", "kind", kind, "error", err)
			remoteOK = false
		}
		s.loadLocal(ctx, kind, &st)
	}

	tasksChanged := st.normalize()

	s.mu.Lock()
	if s.mode == ModeRemote && !remoteOK {
		s.mode = ModeLocal
	}
	st.lastID = max(st.lastID, s.state.lastID)
	s.state = st
	s.mu.Unlock()

	s.logger.Infow("State loaded",
		"mode", s.Mode().String(),
		"tasks", st.Tasks.Count(),
		"notes", len(st.Notes),
		"projects", len(st.Projects),
		"normalized", tasksChanged,
	)

	for _, t := range []EventType{TasksChanged, NotesChanged, ProjectsChanged, PreferencesChanged} {
		s.emit(Event{Type: t})
	}

	if tasksChanged {
		_, err := s.Apply(ctx, func(*State) (Change, error) {
			return Change{Tasks: true}, nil
		})
		return err
	}
	return nil
}

func (s *Session) loadRemote(ctx context.Context, kind entities.EntityKind, st *State) error {
	var err error
	switch kind {
	case entities.KindTasks:
		st.Tasks, err = s.remote.GetTasks(ctx)
	case entities.KindNotes:
		st.Notes, err = s.remote.GetNotes(ctx)
	case entities.KindProjects:
		st.Projects, err = s.remote.GetProjects(ctx)
	case entities.KindPreferences:
		st.Prefs, err = s.remote.GetPreferences(ctx)
	}
	return err
}

func (s *Session) loadLocal(ctx context.Context, kind entities.EntityKind, st *State) {
	switch kind {
	case entities.KindTasks:
		st.Tasks = s.local.LoadTasks(ctx)
	case entities.KindNotes:
		st.Notes = s.local.LoadNotes(ctx)
	case entities.KindProjects:
		st.Projects = s.local.LoadProjects(ctx)
	case entities.KindPreferences:
		st.Prefs = s.local.LoadPreferences(ctx)
	}
}

// Apply runs fn against the live state under the session lock, then
// persists every collection fn reports as changed. An error from fn is
// returned as is and fn must not have mutated anything in that case.
// Persistence runs outside the lock on a snapshot; its failures come back
// as *entities.PersistenceError values and never undo the in-memory change.
func (s *Session) Apply(ctx context.Context, fn func(*State) (Change, error)) (Change, error) {
	s.mu.Lock()
	change, err := fn(&s.state)
	if err != nil {
		s.mu.Unlock()
		return Change{}, err
	}
	snapshot := s.state.clone()
	mode := s.mode
	s.mu.Unlock()

	if !change.Any() {
		return change, nil
	}

	return change, s.commit(ctx, mode, change, snapshot)
}

func (s *Session) commit(ctx context.Context, mode Mode, change Change, snapshot State) error {
	var errs []error

	if change.Tasks {
		s.emit(Event{Type: TasksChanged})
		errs = append(errs, s.persist(ctx, mode, entities.KindTasks,
			func(ctx context.Context) error { return s.remote.SaveTasks(ctx, snapshot.Tasks) },
			func(ctx context.Context) error { return s.local.SaveTasks(ctx, snapshot.Tasks) },
		))
	}

	if change.Projects {
		s.emit(Event{Type: ProjectsChanged})
		errs = append(errs, s.persist(ctx, mode, entities.KindProjects,
			func(ctx context.Context) error { return s.remote.SaveProjects(ctx, snapshot.Projects) },
			func(ctx context.Context) error { return s.local.SaveProjects(ctx, snapshot.Projects) },
		))
	}

	if change.Notes {
		s.emit(Event{Type: NotesChanged})
		errs = append(errs, s.persist(ctx, mode, entities.KindNotes,
			func(ctx context.Context) error { return s.saveNotesRemote(ctx, change, snapshot.Notes) },
			func(ctx context.Context) error { return s.local.SaveNotes(ctx, snapshot.Notes) },
		))
	}

	if change.Preferences {
		s.emit(Event{Type: PreferencesChanged})
		errs = append(errs, s.persist(ctx, mode, entities.KindPreferences,
			func(ctx context.Context) error { return s.remote.SavePreferences(ctx, snapshot.Prefs) },
			func(ctx context.Context) error { return s.local.SavePreferences(ctx, snapshot.Prefs) },
		))
	}

	return errors.Join(errs...)
}

func (s *Session) saveNotesRemote(ctx context.Context, change Change, notes []entities.Note) error {
	switch {
	case change.SavedNote != nil:
		_, err := s.remote.SaveNote(ctx, *change.SavedNote)
		return err
	case len(change.DeletedNotes) > 0:
		var firstErr error
		for _, id := range change.DeletedNotes {
			if err := s.remote.DeleteNote(ctx, id); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	for _, note := range notes {
		if _, err := s.remote.SaveNote(ctx, note); err != nil {
			return err
		}
	}
	return nil
}

// persist writes one collection through the active policy: remote first in
// remote mode, local storage for that write when the remote call fails.
func (s *Session) persist(ctx context.Context, mode Mode, kind entities.EntityKind, remoteWrite, localWrite func(context.Context) error) error {
	if mode == ModeRemote && s.remote != nil {
		start := time.Now()
		err := remoteWrite(ctx)
		s.logger.LogStoreOperation("remote", "save", string(kind), msSince(start), err)
		if err == nil {
			return nil
		}
	}

	start := time.Now()
	err := localWrite(ctx)
	s.logger.LogStoreOperation("local", "save", string(kind), msSince(start), err)
	if err != nil {
		perr := &entities.PersistenceError{Kind: kind, Err: err}
		s.emit(Event{Type: PersistenceWarning, Kind: kind, Err: perr})
		return perr
	}
	return nil
}

// RebuildProjectIndex recomputes every project's back-references from the
// tasks and persists projects when the index was out of date. It reports
// whether anything changed.
func (s *Session) RebuildProjectIndex(ctx context.Context) (bool, error) {
	change, err := s.Apply(ctx, func(st *State) (Change, error) {
		return Change{Projects: st.rebuildIndex()}, nil
	})
	return change.Projects, err
}

// Snapshot returns a deep copy of the whole state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Tasks returns a copy of every task bucket.
func (s *Session) Tasks() entities.TasksByDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Tasks.Clone()
}

// Notes returns a copy of the note collection.
func (s *Session) Notes() []entities.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Note{}, s.state.Notes...)
}

// Projects returns a copy of the project collection.
func (s *Session) Projects() []entities.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entities.CloneProjects(s.state.Projects)
}

// Preferences returns a copy of the preferences.
func (s *Session) Preferences() entities.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Prefs.Clone()
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
