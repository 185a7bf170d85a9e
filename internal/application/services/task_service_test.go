package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/dayplanner/internal/domain/entities"
	"github.com/taskmaster/dayplanner/internal/testutil"
)

func validTask() TaskInput {
	return TaskInput{
		Title:     "Write spec",
		Date:      "2025-03-01",
		StartTime: "09:00",
		EndTime:   "10:00",
	}
}

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	h := newHarness(t)

	task, err := h.tasks.CreateOrUpdate(context.Background(), validTask())
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, entities.NewID(h.clock.Now().UnixMilli()), task.ID)
	assert.Equal(t, entities.DefaultCategory, task.Category)
	assert.False(t, task.Completed)
	assert.Equal(t, 1, h.remote.Count("SaveTasks"))
	assert.Len(t, h.remote.Tasks["2025-03-01"], 1)
}

func TestTaskService_ValidationAbortsBeforeMutation(t *testing.T) {
	h := newHarness(t)

	input := validTask()
	input.Title = "   "
	input.StartTime = "9am"

	task, err := h.tasks.CreateOrUpdate(context.Background(), input)
	assert.Nil(t, task)
	require.ErrorIs(t, err, entities.ErrValidation)

	var verr *entities.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"title", "startTime"}, verr.Fields)

	assert.Zero(t, h.session.Tasks().Count())
	assert.Zero(t, h.remote.Count("SaveTasks"))
}

func TestTaskService_EditMovesBucket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.tasks.CreateOrUpdate(ctx, validTask())
	require.NoError(t, err)
	_, err = h.tasks.ToggleCompleted(ctx, created.Date, created.ID)
	require.NoError(t, err)

	edit := validTask()
	edit.ID = created.ID
	edit.Date = "2025-03-02"
	edit.Title = "Write spec v2"
	edited, err := h.tasks.CreateOrUpdate(ctx, edit)
	require.NoError(t, err)

	assert.Equal(t, created.ID, edited.ID)
	assert.True(t, edited.Completed, "edits keep the completed flag")

	tasks := h.tasks.List()
	assert.NotContains(t, tasks, "2025-03-01", "emptied bucket is removed")
	require.Len(t, tasks["2025-03-02"], 1)
	assert.Equal(t, "Write spec v2", tasks["2025-03-02"][0].Title)
	assert.Equal(t, 1, tasks.Count())
}

func TestTaskService_EditUnknownTask(t *testing.T) {
	h := newHarness(t)

	edit := validTask()
	edit.ID = "404"
	task, err := h.tasks.CreateOrUpdate(context.Background(), edit)
	assert.Nil(t, task)
	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Zero(t, h.remote.Count("SaveTasks"))
}

func TestTaskService_IdsAcceptEitherForm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.tasks.CreateOrUpdate(ctx, validTask())
	require.NoError(t, err)

	asFloat := entities.ID(created.ID.String() + ".0")
	got, err := h.tasks.Get(asFloat)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, h.tasks.Delete(ctx, "", asFloat))
	assert.Zero(t, h.session.Tasks().Count())
}

func TestTaskService_LinkAndUnlink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p1, err := h.projects.CreateOrUpdate(ctx, ProjectInput{Name: "One", StartDate: "2025-03-01"})
	require.NoError(t, err)
	p2, err := h.projects.CreateOrUpdate(ctx, ProjectInput{Name: "Two", StartDate: "2025-03-01"})
	require.NoError(t, err)

	input := validTask()
	input.ProjectID = p1.ID
	task, err := h.tasks.CreateOrUpdate(ctx, input)
	require.NoError(t, err)

	got, err := h.projects.Get(p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []entities.TaskRef{{TaskID: task.ID, Date: "2025-03-01"}}, got.Tasks)

	input.ID = task.ID
	input.ProjectID = p2.ID
	_, err = h.tasks.CreateOrUpdate(ctx, input)
	require.NoError(t, err)

	got, _ = h.projects.Get(p1.ID)
	assert.Empty(t, got.Tasks)
	got, _ = h.projects.Get(p2.ID)
	require.Len(t, got.Tasks, 1)

	require.NoError(t, h.tasks.Delete(ctx, task.Date, task.ID))
	got, _ = h.projects.Get(p2.ID)
	assert.Empty(t, got.Tasks)
}

func TestTaskService_RemoteFailureFallsBackToLocal(t *testing.T) {
	h := newHarness(t)
	h.remote.FailSaves(entities.KindTasks)

	task, err := h.tasks.CreateOrUpdate(context.Background(), validTask())
	require.NoError(t, err)
	require.NotNil(t, task)

	assert.Equal(t, 1, h.session.Tasks().Count())
	assert.Equal(t, 1, h.local.SaveCount(entities.KindTasks))
	assert.Equal(t, h.session.Tasks(), h.local.Tasks, "local storage receives the same collection")
}

func TestTaskService_PersistenceErrorStillReturnsTask(t *testing.T) {
	h := newHarness(t)
	h.remote.FailSaves(entities.KindTasks)
	h.local.FailSaves(entities.KindTasks)

	task, err := h.tasks.CreateOrUpdate(context.Background(), validTask())
	require.NotNil(t, task)
	var perr *entities.PersistenceError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, h.session.Tasks().Count())
}

func TestTaskService_ListDay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	late := validTask()
	late.StartTime, late.EndTime = "15:00", "16:00"
	_, err := h.tasks.CreateOrUpdate(ctx, late)
	require.NoError(t, err)

	h.clock.Advance(time.Millisecond)
	_, err = h.tasks.CreateOrUpdate(ctx, validTask())
	require.NoError(t, err)

	day := h.tasks.ListDay("2025-03-01")
	require.Len(t, day, 2)
	assert.Equal(t, "09:00", day[0].StartTime)
	assert.Equal(t, []entities.Task{}, h.tasks.ListDay("2025-01-01"))
}

func TestTaskService_RejectsUnpaddedTimes(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		field string
	}{
		{name: "single digit hour", start: "9:00", end: "10:00", field: "startTime"},
		{name: "single digit end", start: "08:00", end: "9:30", field: "endTime"},
		{name: "hour out of range", start: "24:00", end: "10:00", field: "startTime"},
		{name: "seconds", start: "09:00:00", end: "10:00", field: "startTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			input := validTask()
			input.StartTime, input.EndTime = tt.start, tt.end
			task, err := h.tasks.CreateOrUpdate(context.Background(), input)
			assert.Nil(t, task)

			var verr *entities.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tt.field}, verr.Fields)
			assert.Zero(t, h.session.Tasks().Count())
		})
	}
}

func TestTaskService_ListDayOrdersPaddedTimes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ten := validTask()
	ten.StartTime, ten.EndTime = "10:00", "11:00"
	_, err := h.tasks.CreateOrUpdate(ctx, ten)
	require.NoError(t, err)

	h.clock.Advance(time.Millisecond)
	nine := validTask()
	nine.StartTime = "9:00"
	_, err = h.tasks.CreateOrUpdate(ctx, nine)
	require.ErrorIs(t, err, entities.ErrValidation)

	nine.StartTime = "09:00"
	_, err = h.tasks.CreateOrUpdate(ctx, nine)
	require.NoError(t, err)

	day := h.tasks.ListDay("2025-03-01")
	require.Len(t, day, 2)
	assert.Equal(t, []string{"09:00", "10:00"}, []string{day[0].StartTime, day[1].StartTime})
}

func TestTaskService_CreateWhileCreateInFlight(t *testing.T) {
	remote := newStallingRemote(entities.KindTasks)
	h := newHarnessOn(t, remote, remote.MockRemoteStore, testutil.NewMockLocalStore())
	ctx := context.Background()

	existing, err := h.tasks.CreateOrUpdate(ctx, validTask())
	require.NoError(t, err)
	h.clock.Advance(time.Millisecond)

	review := validTask()
	review.Title = "Review spec"

	type result struct {
		task *entities.Task
		err  error
	}
	first := make(chan result, 1)
	remote.hold()
	go func() {
		task, err := h.tasks.CreateOrUpdate(ctx, review)
		first <- result{task, err}
	}()
	<-remote.entered

	dup, err := h.tasks.CreateOrUpdate(ctx, review)
	assert.NoError(t, err)
	assert.Nil(t, dup, "second create is dropped while the first is saving")

	edit := validTask()
	edit.ID = existing.ID
	edit.Title = "Write spec v2"
	edited, err := h.tasks.CreateOrUpdate(ctx, edit)
	require.NoError(t, err, "edits do not wait for the create guard")
	require.NotNil(t, edited)
	assert.Equal(t, "Write spec v2", edited.Title)

	close(remote.release)
	res := <-first
	require.NoError(t, res.err)
	require.NotNil(t, res.task)

	var titles []string
	for _, task := range h.tasks.ListDay("2025-03-01") {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"Write spec v2", "Review spec"}, titles)

	h.clock.Advance(time.Millisecond)
	again, err := h.tasks.CreateOrUpdate(ctx, review)
	require.NoError(t, err)
	assert.NotNil(t, again, "guard is released once the create finishes")
}
