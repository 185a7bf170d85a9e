// Package documents implements the backend's per-device document API on top
// of a DocumentRepository. Records are kept as loosely typed JSON objects so
// that fields the server does not know about survive a round trip.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/infrastructure/metrics"
	"github.com/taskmaster/dayplanner/internal/ports"
)

// Record is one stored task, note or project.
type Record map[string]any

// ID returns the record's identifier, zero when it has none.
func (r Record) ID() entities.ID {
	return toID(r["id"])
}

func (r Record) Identifier() entities.ID { return r.ID() }

func (r Record) str(key string) string {
	s, _ := r[key].(string)
	return s
}

// TaskDocument is a device's task buckets.
type TaskDocument map[string][]Record

// Service serves the per-device documents.
type Service struct {
	repo    ports.DocumentRepository
	clock   ports.Clock
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewService creates a document service. metrics may be nil.
func NewService(repo ports.DocumentRepository, clock ports.Clock, m *metrics.Metrics, log *logger.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Service{
		repo:    repo,
		clock:   clock,
		metrics: m,
		logger:  log.WithComponent("documents"),
	}
}

// Ping checks the backing store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// GetTasks returns the device's task buckets, empty when none are stored.
func (s *Service) GetTasks(ctx context.Context, deviceID string) (TaskDocument, error) {
	doc := TaskDocument{}
	if err := s.load(ctx, entities.KindTasks, deviceID, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = TaskDocument{}
	}
	return doc, nil
}

// ReplaceTasks overwrites the device's task buckets.
func (s *Service) ReplaceTasks(ctx context.Context, deviceID string, doc TaskDocument) error {
	if doc == nil {
		doc = TaskDocument{}
	}
	return s.update(ctx, entities.KindTasks, deviceID, func(current []byte) (any, error) {
		return doc, nil
	})
}

// GetTaskBucket returns one day's tasks, empty when the day has none.
func (s *Service) GetTaskBucket(ctx context.Context, deviceID, date string) ([]Record, error) {
	doc, err := s.GetTasks(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if bucket := doc[date]; bucket != nil {
		return bucket, nil
	}
	return []Record{}, nil
}

// UpsertTask inserts or replaces a task in the bucket for date, assigning
// an id when the task has none, and keeps the bucket ordered by start time.
func (s *Service) UpsertTask(ctx context.Context, deviceID, date string, task Record) (Record, error) {
	if task.ID().IsZero() {
		task["id"] = s.clock.Now().UnixMilli()
	}

	err := s.update(ctx, entities.KindTasks, deviceID, func(current []byte) (any, error) {
		doc := TaskDocument{}
		s.decodeOrEmpty(current, &doc, entities.KindTasks)
		if doc == nil {
			doc = TaskDocument{}
		}

		bucket := doc[date]
		if idx, err := entities.Resolve(bucket, task.ID()); err == nil {
			bucket[idx] = task
		} else {
			bucket = append(bucket, task)
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			return startTime(bucket[i]) < startTime(bucket[j])
		})
		doc[date] = bucket
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func startTime(r Record) string {
	if t := r.str("startTime"); t != "" {
		return t
	}
	return "00:00"
}

// DeleteTask removes a task from the bucket for date and drops the bucket
// when it empties. Deleting a missing task is not an error.
func (s *Service) DeleteTask(ctx context.Context, deviceID, date string, id entities.ID) error {
	return s.update(ctx, entities.KindTasks, deviceID, func(current []byte) (any, error) {
		doc := TaskDocument{}
		s.decodeOrEmpty(current, &doc, entities.KindTasks)
		if doc == nil {
			doc = TaskDocument{}
		}
		if bucket, ok := doc[date]; ok {
			bucket = removeByID(bucket, id)
			if len(bucket) == 0 {
				delete(doc, date)
			} else {
				doc[date] = bucket
			}
		}
		return doc, nil
	})
}

// GetNotes returns the device's notes, empty when none are stored or the
// stored document is not a list.
func (s *Service) GetNotes(ctx context.Context, deviceID string) ([]Record, error) {
	return s.loadList(ctx, entities.KindNotes, deviceID)
}

// UpsertNote inserts or replaces a note. A note without id gets one along
// with createdAt. The list stays ordered by date and time.
func (s *Service) UpsertNote(ctx context.Context, deviceID string, note Record) (Record, error) {
	if note.ID().IsZero() {
		now := s.clock.Now()
		note["id"] = now.UnixMilli()
		note["createdAt"] = now.UTC().Format(entities.TimestampLayout)
	}

	err := s.updateList(ctx, entities.KindNotes, deviceID, func(notes []Record) []Record {
		notes = upsertByID(notes, note)
		sort.SliceStable(notes, func(i, j int) bool {
			return alarmMoment(notes[i]) < alarmMoment(notes[j])
		})
		return notes
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func alarmMoment(r Record) string {
	return r.str("date") + "T" + r.str("time")
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, deviceID string, id entities.ID) error {
	return s.updateList(ctx, entities.KindNotes, deviceID, func(notes []Record) []Record {
		return removeByID(notes, id)
	})
}

// GetProjects returns the device's projects.
func (s *Service) GetProjects(ctx context.Context, deviceID string) ([]Record, error) {
	return s.loadList(ctx, entities.KindProjects, deviceID)
}

// ReplaceProjects overwrites the device's projects.
func (s *Service) ReplaceProjects(ctx context.Context, deviceID string, projects []Record) error {
	if projects == nil {
		projects = []Record{}
	}
	return s.update(ctx, entities.KindProjects, deviceID, func(current []byte) (any, error) {
		return projects, nil
	})
}

// GetProject returns one project or entities.ErrProjectNotFound.
func (s *Service) GetProject(ctx context.Context, deviceID string, id entities.ID) (Record, error) {
	projects, err := s.GetProjects(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	idx, err := entities.Resolve(projects, id)
	if err != nil {
		return nil, entities.ErrProjectNotFound
	}
	return projects[idx], nil
}

// UpsertProject inserts or replaces a project, assigning id and createdAt
// when the project has no id.
func (s *Service) UpsertProject(ctx context.Context, deviceID string, project Record) (Record, error) {
	if project.ID().IsZero() {
		now := s.clock.Now()
		project["id"] = now.UnixMilli()
		project["createdAt"] = now.UTC().Format(entities.TimestampLayout)
	}

	err := s.updateList(ctx, entities.KindProjects, deviceID, func(projects []Record) []Record {
		return upsertByID(projects, project)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project.
func (s *Service) DeleteProject(ctx context.Context, deviceID string, id entities.ID) error {
	return s.updateList(ctx, entities.KindProjects, deviceID, func(projects []Record) []Record {
		return removeByID(projects, id)
	})
}

// GetPreferences returns the device's preference object.
func (s *Service) GetPreferences(ctx context.Context, deviceID string) (map[string]any, error) {
	prefs := map[string]any{}
	if err := s.load(ctx, entities.KindPreferences, deviceID, &prefs); err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = map[string]any{}
	}
	return prefs, nil
}

// ReplacePreferences overwrites the device's preference object.
func (s *Service) ReplacePreferences(ctx context.Context, deviceID string, prefs map[string]any) error {
	if prefs == nil {
		prefs = map[string]any{}
	}
	return s.update(ctx, entities.KindPreferences, deviceID, func(current []byte) (any, error) {
		return prefs, nil
	})
}

func (s *Service) load(ctx context.Context, kind entities.EntityKind, deviceID string, out any) error {
	start := time.Now()
	body, err := s.repo.Get(ctx, kind, deviceID)
	s.observe("get", kind, start, err)
	if err != nil {
		return fmt.Errorf("read %s: %w", kind, err)
	}
	s.decodeOrEmpty(body, out, kind)
	return nil
}

func (s *Service) loadList(ctx context.Context, kind entities.EntityKind, deviceID string) ([]Record, error) {
	var list []Record
	if err := s.load(ctx, kind, deviceID, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []Record{}
	}
	return list, nil
}

func (s *Service) update(ctx context.Context, kind entities.EntityKind, deviceID string, fn func(current []byte) (any, error)) error {
	start := time.Now()
	err := s.repo.Update(ctx, kind, deviceID, func(current []byte) ([]byte, error) {
		doc, err := fn(current)
		if err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	})
	s.observe("update", kind, start, err)
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

func (s *Service) updateList(ctx context.Context, kind entities.EntityKind, deviceID string, fn func([]Record) []Record) error {
	return s.update(ctx, kind, deviceID, func(current []byte) (any, error) {
		var list []Record
		s.decodeOrEmpty(current, &list, kind)
		list = fn(list)
		if list == nil {
			list = []Record{}
		}
		return list, nil
	})
}

// decodeOrEmpty decodes body into out keeping numbers exact. A document of
// the wrong shape is treated as absent.
func (s *Service) decodeOrEmpty(body []byte, out any, kind entities.EntityKind) {
	if len(bytes.TrimSpace(body)) == 0 {
		return
	}
	target := reflect.New(reflect.TypeOf(out).Elem())
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target.Interface()); err != nil {
		s.logger.Warnw("Ignoring malformed stored document", "kind", kind, "error", err)
		return
	}
	reflect.ValueOf(out).Elem().Set(target.Elem())
}

func (s *Service) observe(op string, kind entities.EntityKind, start time.Time, err error) {
	s.metrics.ObserveStore(op, string(kind), err)
	s.logger.LogStoreOperation("documents", op, string(kind), float64(time.Since(start).Nanoseconds())/1e6, err)
}

func upsertByID(list []Record, rec Record) []Record {
	if idx, err := entities.Resolve(list, rec.ID()); err == nil {
		list[idx] = rec
		return list
	}
	return append(list, rec)
}

func removeByID(list []Record, id entities.ID) []Record {
	kept := make([]Record, 0, len(list))
	for _, rec := range list {
		if !entities.SameID(rec.ID(), id) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// toID converts a decoded JSON value into an ID.
func toID(v any) entities.ID {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return entities.ID(id)
	case json.Number:
		return entities.ID(id.String())
	case float64:
		return entities.ID(strconv.FormatFloat(id, 'f', -1, 64))
	case int64:
		return entities.NewID(id)
	case int:
		return entities.NewID(int64(id))
	default:
		return entities.ID(fmt.Sprint(id))
	}
}

// DecodeRecord decodes a JSON object body keeping numbers exact.
func DecodeRecord(body []byte) (Record, error) {
	var rec Record
	if err := decodeStrict(body, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("expected a JSON object")
	}
	return rec, nil
}

// DecodeTaskDocument decodes a full task document body.
func DecodeTaskDocument(body []byte) (TaskDocument, error) {
	var doc TaskDocument
	if err := decodeStrict(body, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("expected a JSON object")
	}
	return doc, nil
}

// DecodeRecordList decodes a list body; anything that is not a list yields
// an empty list.
func DecodeRecordList(body []byte) []Record {
	var list []Record
	if err := decodeStrict(body, &list); err != nil || list == nil {
		return []Record{}
	}
	return list
}

// DecodeObject decodes a free-form JSON object body.
func DecodeObject(body []byte) (map[string]any, error) {
	var obj map[string]any
	if err := decodeStrict(body, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("expected a JSON object")
	}
	return obj, nil
}

func decodeStrict(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
