package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// Common errors
var (
	ErrNotFound          = errors.New("not found")
	ErrTaskNotFound      = fmt.Errorf("task %w", ErrNotFound)
	ErrNoteNotFound      = fmt.Errorf("note %w", ErrNotFound)
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrValidation        = errors.New("validation failed")
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrQuotaExceeded     = errors.New("local storage quota exceeded")
)

// ValidationError lists the required input fields that were missing or
// malformed. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing or invalid field(s): %s", e.Entity, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PersistenceError reports that an in-memory change was applied but could
// not be written to any store.
type PersistenceError struct {
	Kind EntityKind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// EntityKind names one of the per-device documents.
type EntityKind string

const (
	KindTasks       EntityKind = "tasks"
	KindNotes       EntityKind = "notes"
	KindProjects    EntityKind = "projects"
	KindPreferences EntityKind = "preferences"
)

// Kinds lists every entity kind in load order.
var Kinds = []EntityKind{KindTasks, KindNotes, KindProjects, KindPreferences}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "not-started"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusOnHold     ProjectStatus = "on-hold"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// Defaults applied when data or input omits a value.
const (
	DefaultStartTime    = "09:00"
	DefaultEndTime      = "10:00"
	DefaultCategory     = "Meeting"
	DefaultProjectColor = "#6366f1"
	DefaultLanguage     = "en"
	DefaultProjectSpan  = 30 // days

	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Task is a scheduled item living in exactly one date bucket.
type Task struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Category    string `json:"category"`
	ProjectID   ID     `json:"projectId"`
	Completed   bool   `json:"completed"`

	// set by UnmarshalJSON when the stored record had no completed field
	completedMissing bool
}

func (t Task) Identifier() ID { return t.ID }

// UnmarshalJSON decodes a task and remembers whether "completed" was
// present, so the normalization pass can tell old records apart.
func (t *Task) UnmarshalJSON(data []byte) error {
	type taskAlias Task
	aux := struct {
		*taskAlias
		Completed *bool `json:"completed"`
	}{taskAlias: (*taskAlias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.completedMissing = aux.Completed == nil
	if aux.Completed != nil {
		t.Completed = *aux.Completed
	}
	return nil
}

// IsValid reports whether the task can be kept at all.
func (t *Task) IsValid() bool {
	return strings.TrimSpace(t.Title) != ""
}

// ApplyDefaults fills fields that older data shapes lack. The bucket date
// is authoritative for Date. It reports whether anything changed.
func (t *Task) ApplyDefaults(bucket string) bool {
	changed := false
	if t.completedMissing {
		t.Completed = false
		t.completedMissing = false
		changed = true
	}
	if t.StartTime == "" {
		t.StartTime = DefaultStartTime
		changed = true
	}
	if t.EndTime == "" {
		t.EndTime = DefaultEndTime
		changed = true
	}
	if bucket != "" && t.Date != bucket {
		t.Date = bucket
		changed = true
	}
	return changed
}

// TasksByDay maps a YYYY-MM-DD date to its bucket of tasks.
type TasksByDay map[string][]Task

// Clone returns a deep copy.
func (d TasksByDay) Clone() TasksByDay {
	out := make(TasksByDay, len(d))
	for date, bucket := range d {
		out[date] = append([]Task(nil), bucket...)
	}
	return out
}

// Find locates a task by id across every bucket.
func (d TasksByDay) Find(id ID) (string, int, bool) {
	for _, date := range d.Dates() {
		if idx, err := Resolve(d[date], id); err == nil {
			return date, idx, true
		}
	}
	return "", -1, false
}

// Dates returns the bucket keys in ascending order.
func (d TasksByDay) Dates() []string {
	dates := make([]string, 0, len(d))
	for date := range d {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Count returns the number of tasks across every bucket.
func (d TasksByDay) Count() int {
	n := 0
	for _, bucket := range d {
		n += len(bucket)
	}
	return n
}

// SortBucket orders a bucket by start time. HH:MM is zero padded, so the
// lexical order is the chronological one; ties keep their order.
func (d TasksByDay) SortBucket(date string) {
	bucket := d[date]
	sort.SliceStable(bucket, func(i, j int) bool {
		return bucket[i].StartTime < bucket[j].StartTime
	})
}

// TaskRef is a project's non-owning back-reference to one of its tasks.
type TaskRef struct {
	TaskID ID     `json:"taskId"`
	Date   string `json:"date"`
}

func (r TaskRef) Identifier() ID { return r.TaskID }

// Note is a dated reminder that is deleted when its alarm minute arrives.
type Note struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	CreatedAt string `json:"createdAt"`
}

func (n Note) Identifier() ID { return n.ID }

// Preview truncates the content for display; storage always keeps it whole.
func (n Note) Preview(max int) string {
	if max <= 0 || utf8.RuneCountInString(n.Content) <= max {
		return n.Content
	}
	runes := []rune(n.Content)
	return string(runes[:max]) + "..."
}

// SortNotes orders notes by alarm moment, date first then time.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Date != notes[j].Date {
			return notes[i].Date < notes[j].Date
		}
		return notes[i].Time < notes[j].Time
	})
}

// Project groups tasks; Tasks is a cache of back-references, Task.ProjectID
// stays authoritative.
type Project struct {
	ID          ID            `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Priority    Priority      `json:"priority"`
	Status      ProjectStatus `json:"status"`
	Color       string        `json:"color"`
	Tasks       []TaskRef     `json:"tasks"`
	CreatedAt   string        `json:"createdAt"`
}

func (p Project) Identifier() ID { return p.ID }

// UnmarshalJSON tolerates a malformed tasks list by replacing it with an
// empty one.
func (p *Project) UnmarshalJSON(data []byte) error {
	type projectAlias Project
	aux := struct {
		*projectAlias
		Tasks json.RawMessage `json:"tasks"`
	}{projectAlias: (*projectAlias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Tasks = []TaskRef{}
	if len(aux.Tasks) > 0 {
		var refs []TaskRef
		if err := json.Unmarshal(aux.Tasks, &refs); err == nil && refs != nil {
			p.Tasks = refs
		}
	}
	return nil
}

// Clone returns a copy that shares nothing with p.
func (p Project) Clone() Project {
	p.Tasks = append([]TaskRef{}, p.Tasks...)
	return p
}

// CloneProjects deep-copies a project list.
func CloneProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}

// Preferences is the free-form per-device settings object.
type Preferences map[string]any

// Language returns the configured UI language, "en" when unset.
func (p Preferences) Language() string {
	if lang, ok := p["language"].(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}

// Clone returns a shallow copy of the top-level keys.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
