// Package testutil provides shared test doubles for the planner ports.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// MockClock is a settable ports.Clock.
type MockClock struct {
	mu      sync.Mutex
	NowTime time.Time
}

// NewMockClock returns a clock stopped at now.
func NewMockClock(now time.Time) *MockClock {
	return &MockClock{NowTime: now}
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// Set moves the clock to t.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = t
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = m.NowTime.Add(d)
}

// MockRemoteStore is an in-memory ports.RemoteStore. Errors set in GetErr
// and SaveErr are returned for the matching kind and wrapped in
// entities.ErrRemoteUnavailable.
type MockRemoteStore struct {
	mu sync.Mutex

	Healthy     bool
	Tasks       entities.TasksByDay
	Notes       []entities.Note
	Projects    []entities.Project
	Preferences entities.Preferences

	GetErr  map[entities.EntityKind]error
	SaveErr map[entities.EntityKind]error

	Calls []string
}

// NewMockRemoteStore creates a healthy, empty remote store.
func NewMockRemoteStore() *MockRemoteStore {
	return &MockRemoteStore{
		Healthy:     true,
		Tasks:       entities.TasksByDay{},
		Notes:       []entities.Note{},
		Projects:    []entities.Project{},
		Preferences: entities.Preferences{},
		GetErr:      map[entities.EntityKind]error{},
		SaveErr:     map[entities.EntityKind]error{},
	}
}

// FailGets makes every load of kind fail.
func (m *MockRemoteStore) FailGets(kind entities.EntityKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr[kind] = fmt.Errorf("GET %s: %w", kind, entities.ErrRemoteUnavailable)
}

// FailSaves makes every write of kind fail.
func (m *MockRemoteStore) FailSaves(kind entities.EntityKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErr[kind] = fmt.Errorf("POST %s: %w", kind, entities.ErrRemoteUnavailable)
}

// CallLog returns a copy of the recorded calls.
func (m *MockRemoteStore) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.Calls...)
}

// Count returns how many recorded calls equal name.
func (m *MockRemoteStore) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockRemoteStore) record(name string) {
	m.Calls = append(m.Calls, name)
}

func (m *MockRemoteStore) Health(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Health")
	return m.Healthy
}

func (m *MockRemoteStore) GetTasks(ctx context.Context) (entities.TasksByDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetTasks")
	if err := m.GetErr[entities.KindTasks]; err != nil {
		return nil, err
	}
	return m.Tasks.Clone(), nil
}

func (m *MockRemoteStore) SaveTasks(ctx context.Context, tasks entities.TasksByDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SaveTasks")
	if err := m.SaveErr[entities.KindTasks]; err != nil {
		return err
	}
	m.Tasks = tasks.Clone()
	return nil
}

func (m *MockRemoteStore) GetNotes(ctx context.Context) ([]entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetNotes")
	if err := m.GetErr[entities.KindNotes]; err != nil {
		return nil, err
	}
	return append([]entities.Note{}, m.Notes...), nil
}

func (m *MockRemoteStore) SaveNote(ctx context.Context, note entities.Note) (*entities.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SaveNote")
	if err := m.SaveErr[entities.KindNotes]; err != nil {
		return nil, err
	}
	if idx, err := entities.Resolve(m.Notes, note.ID); err == nil {
		m.Notes[idx] = note
	} else {
		m.Notes = append(m.Notes, note)
	}
	entities.SortNotes(m.Notes)
	return &note, nil
}

func (m *MockRemoteStore) DeleteNote(ctx context.Context, id entities.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteNote")
	if err := m.SaveErr[entities.KindNotes]; err != nil {
		return err
	}
	if idx, err := entities.Resolve(m.Notes, id); err == nil {
		m.Notes = append(m.Notes[:idx:idx], m.Notes[idx+1:]...)
	}
	return nil
}

func (m *MockRemoteStore) GetProjects(ctx context.Context) ([]entities.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetProjects")
	if err := m.GetErr[entities.KindProjects]; err != nil {
		return nil, err
	}
	return entities.CloneProjects(m.Projects), nil
}

func (m *MockRemoteStore) SaveProjects(ctx context.Context, projects []entities.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SaveProjects")
	if err := m.SaveErr[entities.KindProjects]; err != nil {
		return err
	}
	m.Projects = entities.CloneProjects(projects)
	return nil
}

func (m *MockRemoteStore) GetPreferences(ctx context.Context) (entities.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetPreferences")
	if err := m.GetErr[entities.KindPreferences]; err != nil {
		return nil, err
	}
	return m.Preferences.Clone(), nil
}

func (m *MockRemoteStore) SavePreferences(ctx context.Context, prefs entities.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SavePreferences")
	if err := m.SaveErr[entities.KindPreferences]; err != nil {
		return err
	}
	m.Preferences = prefs.Clone()
	return nil
}

// MockLocalStore is an in-memory ports.LocalStore and ports.KeyValueStore.
type MockLocalStore struct {
	mu sync.Mutex

	Tasks       entities.TasksByDay
	Notes       []entities.Note
	Projects    []entities.Project
	Preferences entities.Preferences
	Values      map[string]string

	SaveErr map[entities.EntityKind]error
	SetErr  error

	Saves map[entities.EntityKind]int
}

// NewMockLocalStore creates an empty local store.
func NewMockLocalStore() *MockLocalStore {
	return &MockLocalStore{
		Tasks:       entities.TasksByDay{},
		Notes:       []entities.Note{},
		Projects:    []entities.Project{},
		Preferences: entities.Preferences{},
		Values:      map[string]string{},
		SaveErr:     map[entities.EntityKind]error{},
		Saves:       map[entities.EntityKind]int{},
	}
}

// SaveCount returns how many successful or failed saves kind has seen.
func (m *MockLocalStore) SaveCount(kind entities.EntityKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves[kind]
}

// FailSaves makes every write of kind fail with entities.ErrQuotaExceeded.
func (m *MockLocalStore) FailSaves(kind entities.EntityKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErr[kind] = fmt.Errorf("save %s: %w", kind, entities.ErrQuotaExceeded)
}

func (m *MockLocalStore) save(kind entities.EntityKind, apply func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves[kind]++
	if err := m.SaveErr[kind]; err != nil {
		return err
	}
	apply()
	return nil
}

func (m *MockLocalStore) LoadTasks(ctx context.Context) entities.TasksByDay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Tasks.Clone()
}

func (m *MockLocalStore) SaveTasks(ctx context.Context, tasks entities.TasksByDay) error {
	return m.save(entities.KindTasks, func() { m.Tasks = tasks.Clone() })
}

func (m *MockLocalStore) LoadNotes(ctx context.Context) []entities.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Note{}, m.Notes...)
}

func (m *MockLocalStore) SaveNotes(ctx context.Context, notes []entities.Note) error {
	return m.save(entities.KindNotes, func() { m.Notes = append([]entities.Note{}, notes...) })
}

func (m *MockLocalStore) LoadProjects(ctx context.Context) []entities.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entities.CloneProjects(m.Projects)
}

func (m *MockLocalStore) SaveProjects(ctx context.Context, projects []entities.Project) error {
	return m.save(entities.KindProjects, func() { m.Projects = entities.CloneProjects(projects) })
}

func (m *MockLocalStore) LoadPreferences(ctx context.Context) entities.Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Preferences.Clone()
}

func (m *MockLocalStore) SavePreferences(ctx context.Context, prefs entities.Preferences) error {
	return m.save(entities.KindPreferences, func() { m.Preferences = prefs.Clone() })
}

func (m *MockLocalStore) Get(ctx context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Values[key]
	return v, ok
}

func (m *MockLocalStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Values[key] = value
	return nil
}
