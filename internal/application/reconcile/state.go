package reconcile

import (
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
)

// State is the in-memory mirror of every collection a device owns. Inside
// Session.Apply it is the live state; everywhere else callers receive deep
// copies.
type State struct {
	Tasks    entities.TasksByDay
	Notes    []entities.Note
	Projects []entities.Project
	Prefs    entities.Preferences

	lastID int64
}

func (st *State) clone() State {
	notes := append([]entities.Note{}, st.Notes...)
	return State{
		Tasks:    st.Tasks.Clone(),
		Notes:    notes,
		Projects: entities.CloneProjects(st.Projects),
		Prefs:    st.Prefs.Clone(),
		lastID:   st.lastID,
	}
}

// NextID returns a fresh identifier derived from now in milliseconds. Ids
// never repeat within a session even when the clock stalls or goes back.
func (st *State) NextID(now time.Time) entities.ID {
	id := now.UnixMilli()
	if id <= st.lastID {
		id = st.lastID + 1
	}
	st.lastID = id
	return entities.NewID(id)
}

// observeID raises the id floor so generated ids stay clear of loaded ones.
func (st *State) observeID(id entities.ID) {
	if n, ok := id.Int64(); ok && n > st.lastID {
		st.lastID = n
	}
}

// PutTask stores task in the bucket named by task.Date, moving it out of
// whichever bucket held it before. The destination bucket is re-sorted. It
// returns the previous version of the task, or nil when the task is new.
func (st *State) PutTask(task entities.Task) *entities.Task {
	if st.Tasks == nil {
		st.Tasks = entities.TasksByDay{}
	}

	var previous *entities.Task
	if date, idx, ok := st.Tasks.Find(task.ID); ok {
		prev := st.Tasks[date][idx]
		previous = &prev
		if date == task.Date {
			st.Tasks[date][idx] = task
			st.Tasks.SortBucket(date)
			return previous
		}
		st.removeAt(date, idx)
	}

	st.Tasks[task.Date] = append(st.Tasks[task.Date], task)
	st.Tasks.SortBucket(task.Date)
	return previous
}

// RemoveTask deletes the task with id from the bucket for date, dropping
// the bucket when it empties. An empty date searches every bucket.
func (st *State) RemoveTask(date string, id entities.ID) (entities.Task, bool) {
	idx := -1
	if date == "" {
		var ok bool
		if date, idx, ok = st.Tasks.Find(id); !ok {
			return entities.Task{}, false
		}
	} else {
		var err error
		if idx, err = entities.Resolve(st.Tasks[date], id); err != nil {
			return entities.Task{}, false
		}
	}

	task := st.Tasks[date][idx]
	st.removeAt(date, idx)
	return task, true
}

// FindTask returns a pointer into the live bucket holding id. A matching
// date is tried first; a stale date falls back to a full search.
func (st *State) FindTask(date string, id entities.ID) (*entities.Task, bool) {
	if idx, err := entities.Resolve(st.Tasks[date], id); err == nil {
		return &st.Tasks[date][idx], true
	}
	if d, idx, ok := st.Tasks.Find(id); ok {
		return &st.Tasks[d][idx], true
	}
	return nil, false
}

func (st *State) removeAt(date string, idx int) {
	bucket := st.Tasks[date]
	bucket = append(bucket[:idx:idx], bucket[idx+1:]...)
	if len(bucket) == 0 {
		delete(st.Tasks, date)
		return
	}
	st.Tasks[date] = bucket
}

// Relink moves task's back-reference from oldProjectID to newProjectID.
// Projects that cannot be resolved are skipped; the task's own ProjectID is
// authoritative. Linking twice never produces a second entry; an existing
// entry has its date refreshed. It reports whether any project changed.
func (st *State) Relink(task entities.Task, oldProjectID, newProjectID entities.ID) bool {
	changed := false

	if !oldProjectID.IsZero() && !entities.SameID(oldProjectID, newProjectID) {
		if idx, err := entities.Resolve(st.Projects, oldProjectID); err == nil {
			changed = removeRefs(&st.Projects[idx], task.ID) || changed
		}
	}

	if !newProjectID.IsZero() {
		if idx, err := entities.Resolve(st.Projects, newProjectID); err == nil {
			p := &st.Projects[idx]
			if r, err := entities.Resolve(p.Tasks, task.ID); err == nil {
				if p.Tasks[r].Date != task.Date {
					p.Tasks[r].Date = task.Date
					changed = true
				}
			} else {
				p.Tasks = append(p.Tasks, entities.TaskRef{TaskID: task.ID, Date: task.Date})
				changed = true
			}
		}
	}

	return changed
}

func removeRefs(p *entities.Project, taskID entities.ID) bool {
	kept := p.Tasks[:0:0]
	for _, ref := range p.Tasks {
		if !entities.SameID(ref.TaskID, taskID) {
			kept = append(kept, ref)
		}
	}
	if len(kept) == len(p.Tasks) {
		return false
	}
	p.Tasks = kept
	return true
}

// UnlinkProject clears ProjectID on every task that points at projectID:
// first the project's own back-references, then a full scan for tasks the
// index missed. It reports how many tasks changed.
func (st *State) UnlinkProject(projectID entities.ID) int {
	cleared := 0

	if idx, err := entities.Resolve(st.Projects, projectID); err == nil {
		for _, ref := range st.Projects[idx].Tasks {
			if task, ok := st.FindTask(ref.Date, ref.TaskID); ok && entities.SameID(task.ProjectID, projectID) {
				task.ProjectID = ""
				cleared++
			}
		}
	}

	for _, date := range st.Tasks.Dates() {
		bucket := st.Tasks[date]
		for i := range bucket {
			if entities.SameID(bucket[i].ProjectID, projectID) {
				bucket[i].ProjectID = ""
				cleared++
			}
		}
	}

	return cleared
}

// rebuildIndex recomputes every project's back-references from a full scan
// of Task.ProjectID and reports whether any list changed.
func (st *State) rebuildIndex() bool {
	changed := false
	for i := range st.Projects {
		p := &st.Projects[i]
		refs := []entities.TaskRef{}
		for _, date := range st.Tasks.Dates() {
			for _, task := range st.Tasks[date] {
				if entities.SameID(task.ProjectID, p.ID) {
					refs = append(refs, entities.TaskRef{TaskID: task.ID, Date: date})
				}
			}
		}
		if !sameRefs(p.Tasks, refs) {
			p.Tasks = refs
			changed = true
		}
	}
	return changed
}

func sameRefs(a, b []entities.TaskRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !entities.SameID(a[i].TaskID, b[i].TaskID) || a[i].Date != b[i].Date {
			return false
		}
	}
	return true
}

// normalize repairs loaded data in place. It reports whether the task
// collection changed and therefore has to be written back.
func (st *State) normalize() bool {
	tasksChanged := false

	if st.Tasks == nil {
		st.Tasks = entities.TasksByDay{}
	}
	for date, bucket := range st.Tasks {
		kept := bucket[:0:0]
		for _, task := range bucket {
			if !task.IsValid() {
				tasksChanged = true
				continue
			}
			if task.ApplyDefaults(date) {
				tasksChanged = true
			}
			st.observeID(task.ID)
			kept = append(kept, task)
		}
		if len(kept) == 0 {
			delete(st.Tasks, date)
			tasksChanged = true
			continue
		}
		st.Tasks[date] = kept
	}

	if st.Notes == nil {
		st.Notes = []entities.Note{}
	}
	for _, note := range st.Notes {
		st.observeID(note.ID)
	}

	if st.Projects == nil {
		st.Projects = []entities.Project{}
	}
	for i := range st.Projects {
		p := &st.Projects[i]
		p.ID = p.ID.Canonical()
		if p.Tasks == nil {
			p.Tasks = []entities.TaskRef{}
		}
		st.observeID(p.ID)
	}

	if st.Prefs == nil {
		st.Prefs = entities.Preferences{}
	}

	return tasksChanged
}
