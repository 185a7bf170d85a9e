package documents

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/adapters/repository"
	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/infrastructure/logger"
	"github.com/taskmaster/dayplanner/internal/testutil"
)

const device = "device_1_abcdef123"

func newTestService(t *testing.T) (*Service, *testutil.MockClock) {
	t.Helper()
	repo, err := repository.NewFileDocumentRepository(t.TempDir())
	require.NoError(t, err)
	clock := testutil.NewMockClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	return NewService(repo, clock, nil, logger.NewNop()), clock
}

func record(t *testing.T, raw string) Record {
	t.Helper()
	rec, err := DecodeRecord([]byte(raw))
	require.NoError(t, err)
	return rec
}

func TestService_EmptyDevice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tasks, err := svc.GetTasks(ctx, device)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	bucket, err := svc.GetTaskBucket(ctx, device, "2025-03-01")
	require.NoError(t, err)
	assert.NotNil(t, bucket)
	assert.Empty(t, bucket)

	notes, err := svc.GetNotes(ctx, device)
	require.NoError(t, err)
	assert.NotNil(t, notes)

	prefs, err := svc.GetPreferences(ctx, device)
	require.NoError(t, err)
	assert.Empty(t, prefs)
}

func TestService_UpsertTaskAssignsIDAndSorts(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	late, err := svc.UpsertTask(ctx, device, "2025-03-01", record(t, `{"title":"late","startTime":"14:00","extra":{"kept":true}}`))
	require.NoError(t, err)
	assert.Equal(t, entities.NewID(clock.Now().UnixMilli()), late.ID())

	clock.Advance(time.Second)
	_, err = svc.UpsertTask(ctx, device, "2025-03-01", record(t, `{"id":7,"title":"early","startTime":"08:30"}`))
	require.NoError(t, err)

	bucket, err := svc.GetTaskBucket(ctx, device, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, bucket, 2)
	assert.Equal(t, "early", bucket[0]["title"])
	assert.Equal(t, "late", bucket[1]["title"])
	assert.Equal(t, map[string]any{"kept": true}, bucket[1]["extra"], "unknown fields survive")

	_, err = svc.UpsertTask(ctx, device, "2025-03-01", record(t, `{"id":"7","title":"early edited","startTime":"08:30"}`))
	require.NoError(t, err)
	bucket, err = svc.GetTaskBucket(ctx, device, "2025-03-01")
	require.NoError(t, err)
	require.Len(t, bucket, 2, "string and numeric ids match")
	assert.Equal(t, "early edited", bucket[0]["title"])
}

func TestService_DeleteTaskDropsEmptyBucket(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	task, err := svc.UpsertTask(ctx, device, "2025-03-01", record(t, `{"title":"only","startTime":"09:00"}`))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, device, "2025-03-01", "missing"))
	require.NoError(t, svc.DeleteTask(ctx, device, "2025-03-01", task.ID()))

	tasks, err := svc.GetTasks(ctx, device)
	require.NoError(t, err)
	assert.NotContains(t, tasks, "2025-03-01")
}

func TestService_DevicesAreIsolated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.ReplaceTasks(ctx, device, TaskDocument{"2025-03-01": {record(t, `{"id":1}`)}}))

	other, err := svc.GetTasks(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, other)

	mine, err := svc.GetTasks(ctx, device)
	require.NoError(t, err)
	assert.Len(t, mine["2025-03-01"], 1)
}

func TestService_NotesOrderedByDateAndTime(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertNote(ctx, device, record(t, `{"title":"b","date":"2025-03-02","time":"08:00"}`))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T08:00:00.000Z", first["createdAt"])

	clock.Advance(time.Second)
	_, err = svc.UpsertNote(ctx, device, record(t, `{"title":"a","date":"2025-03-01","time":"18:00"}`))
	require.NoError(t, err)

	notes, err := svc.GetNotes(ctx, device)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "a", notes[0]["title"])

	require.NoError(t, svc.DeleteNote(ctx, device, first.ID()))
	notes, err = svc.GetNotes(ctx, device)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestService_Projects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetProject(ctx, device, "1")
	assert.ErrorIs(t, err, entities.ErrProjectNotFound)

	p, err := svc.UpsertProject(ctx, device, record(t, `{"name":"Launch"}`))
	require.NoError(t, err)
	require.False(t, p.ID().IsZero())

	got, err := svc.GetProject(ctx, device, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Launch", got["name"])

	require.NoError(t, svc.ReplaceProjects(ctx, device, DecodeRecordList([]byte(`{"not":"a list"}`))))
	projects, err := svc.GetProjects(ctx, device)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestService_Preferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	prefs, err := DecodeObject([]byte(`{"language":"ar","theme":"dark"}`))
	require.NoError(t, err)
	require.NoError(t, svc.ReplacePreferences(ctx, device, prefs))

	got, err := svc.GetPreferences(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, "ar", got["language"])
	assert.Equal(t, "dark", got["theme"])
}

func TestDecodeHelpers(t *testing.T) {
	_, err := DecodeRecord([]byte(`[1,2]`))
	assert.Error(t, err)
	_, err = DecodeRecord([]byte(`null`))
	assert.Error(t, err)

	_, err = DecodeTaskDocument([]byte(`["x"]`))
	assert.Error(t, err)

	doc, err := DecodeTaskDocument([]byte(`{"2025-03-01":[{"id":1712345678901}]}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("1712345678901"), doc["2025-03-01"][0]["id"])

	assert.Empty(t, DecodeRecordList([]byte(`"nope"`)))
	assert.Len(t, DecodeRecordList([]byte(`[{"id":1},{"id":2}]`)), 2)
}

func TestRecordID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want entities.ID
	}{
		{"missing", nil, ""},
		{"string", "abc", "abc"},
		{"number", json.Number("42"), "42"},
		{"float", float64(42), "42"},
		{"int64", int64(42), "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Record{"id": tt.in}.ID())
		})
	}
}
